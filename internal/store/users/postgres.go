package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコードです。
const uniqueViolation = "23505"

// PostgresRepository はPostgreSQLをバックエンドとするユーザーストアです。
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository は PostgresRepository を作成します。
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByUsername はユーザー名でレコードを検索します。
func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT id, username, display_name, email, password_hash, created_at
	          FROM users
	          WHERE username = $1`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.DisplayName, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// Create は新しいユーザーを1回のINSERTで作成します。
// 一意制約違反は ErrUsernameTaken に変換します。
func (r *PostgresRepository) Create(ctx context.Context, user *User) (uuid.UUID, error) {
	query := `INSERT INTO users (username, display_name, email, password_hash)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.DisplayName, user.Email, user.PasswordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, ErrUsernameTaken
		}
		return uuid.Nil, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// FetchProfile は表示用プロフィールを取得します。
func (r *PostgresRepository) FetchProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT id, username, display_name, email
	          FROM users
	          WHERE id = $1`

	profile := &Profile{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID, &profile.Username, &profile.DisplayName, &profile.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return profile, nil
}
