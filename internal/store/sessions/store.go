// Package sessions はセッショントークンとユーザーIDの紐付けを保存します。
// ストアはキー単位で原子的に動作し、TTLによる失効はストア側が保証します。
package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store はセッションストアへの操作を定義します。
type Store interface {
	// Put はトークンをユーザーIDに紐付けて保存します。
	Put(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// Get はトークンに紐付くユーザーIDを返します。
	// 未登録・期限切れのトークンはエラーではなく ok=false を返します。
	Get(ctx context.Context, token string) (userID uuid.UUID, ok bool, err error)
	// Delete は紐付けを削除します。存在しないトークンの削除はエラーになりません。
	Delete(ctx context.Context, token string) error
}
