// Package users はユーザーレコードの永続化を担当します。
// ユーザー名の一意性は最終的にストレージ層が保証します。
package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound は指定したユーザーが存在しないことを表します。
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken はユーザー名が既に使用されていることを表します。
	ErrUsernameTaken = errors.New("username already taken")
)

// User はストアに保存されるユーザーレコードです。
// PasswordHash はbcryptハッシュで、ログや画面には決して出力しません。
type User struct {
	ID           uuid.UUID
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile は画面表示・API応答用のユーザー情報です。認証情報は含みません。
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
}

// Repository はユーザーストアへの操作を定義します。
type Repository interface {
	// FindByUsername はユーザー名でレコードを検索します。存在しない場合は ErrNotFound を返します。
	FindByUsername(ctx context.Context, username string) (*User, error)
	// Create は新しいユーザーを作成してIDを返します。
	// ユーザー名が重複している場合は ErrUsernameTaken を返し、部分的なレコードは残しません。
	Create(ctx context.Context, user *User) (uuid.UUID, error)
	// FetchProfile は表示用プロフィールを取得します。存在しない場合は ErrNotFound を返します。
	FetchProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
}
