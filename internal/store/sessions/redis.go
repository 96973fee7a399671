package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// RedisStore はセッションを Redis に保存します。失効はRedisのTTLに委ねます。
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// Put はトークンをユーザーIDに紐付けて保存します。
func (s *RedisStore) Put(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	return s.rdb.Set(ctx, sessionKey(token), userID.String(), ttl).Err()
}

// Get はトークンに紐付くユーザーIDを取得します。
func (s *RedisStore) Get(ctx context.Context, token string) (uuid.UUID, bool, error) {
	if token == "" {
		return uuid.Nil, false, nil
	}
	val, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		// 壊れた値はセッションなしとして扱い、エラーにはしない
		return uuid.Nil, false, nil
	}
	return id, true, nil
}

// Delete は紐付けを削除します。
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}
