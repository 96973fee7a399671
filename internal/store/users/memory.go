package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository はメモリ上のユーザーストアです。
// ローカル開発とテストで PostgreSQL の代わりに使用します。
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[uuid.UUID]*User
	byUsername map[string]uuid.UUID
}

// NewMemoryRepository は MemoryRepository を作成します。
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[uuid.UUID]*User),
		byUsername: make(map[string]uuid.UUID),
	}
}

// FindByUsername はユーザー名でレコードを検索します。
func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

// Create は新しいユーザーを作成します。一意性チェックと登録を同一ロック内で行います。
func (r *MemoryRepository) Create(ctx context.Context, user *User) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[user.Username]; ok {
		return uuid.Nil, ErrUsernameTaken
	}

	copied := *user
	copied.ID = uuid.New()
	copied.CreatedAt = time.Now().UTC()
	r.byID[copied.ID] = &copied
	r.byUsername[copied.Username] = copied.ID
	return copied.ID, nil
}

// FetchProfile は表示用プロフィールを取得します。
func (r *MemoryRepository) FetchProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Profile{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}, nil
}
