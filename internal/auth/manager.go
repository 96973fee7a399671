// Package auth はセッションライフサイクルとCSRF保護、資格情報の検証を提供します。
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/auth-sessions/internal/store/sessions"
	"github.com/yourusername/auth-sessions/internal/store/users"
)

const (
	// SessionCookieName はセッショントークンを保持するクッキー名です。
	SessionCookieName = "session_id"
)

// フィールド長の制約。クライアント側のmaxlength等は補助でしかないため、必ずサーバー側で検証します。
const (
	UsernameMinLen    = 3
	UsernameMaxLen    = 32
	DisplayNameMinLen = 2
	DisplayNameMaxLen = 16
	PasswordMinLen    = 8
	PasswordMaxLen    = 64
)

var maxSessionLifetime = 12 * time.Hour

// dummyPasswordHash はユーザーが存在しない場合にも比較処理を走らせるためのbcryptハッシュです。
// 応答時間からユーザーの存在を推測されることを防ぎます。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(maxSessionLifetime.Seconds())
}

// Manager は認証処理と依存ストアをまとめた構造体です。
// セッショントークンとユーザーIDの対応は Manager だけがセッションストアを通じて管理します。
type Manager struct {
	users         users.Repository
	sessions      sessions.Store
	secureCookies bool
}

// NewManager は認証マネージャーを作成します。
// secureCookies はリリース環境で true にし、クッキーに Secure 属性を付与します。
func NewManager(userRepo users.Repository, sessionStore sessions.Store, secureCookies bool) *Manager {
	return &Manager{
		users:         userRepo,
		sessions:      sessionStore,
		secureCookies: secureCookies,
	}
}

// ValidateLogin はログイン資格情報を検証し、成功時にユーザーIDを返します。
// CSRF検証は資格情報の参照より前に行います（偽造リクエストにストア参照のタイミング情報を与えない）。
// ユーザー不在とパスワード不一致はどちらも ErrInvalidCredentials になります。
func (m *Manager) ValidateLogin(ctx context.Context, csrfCookie, csrfField, username, password string) (uuid.UUID, error) {
	if err := VerifyCSRF(csrfCookie, csrfField); err != nil {
		return uuid.Nil, err
	}

	user, err := m.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// 不在でもハッシュ比較を実行し、応答時間を既知ユーザーの場合と揃える
			_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return user.ID, nil
}

// RegistrationInput はサインアップフォームの入力一式です。
type RegistrationInput struct {
	Username             string
	DisplayName          string
	Email                string
	EmailConfirmation    string
	Password             string
	PasswordConfirmation string
}

// ValidateRegistration は登録入力を検証し、成功時にユーザーを作成してIDを返します。
// どの検証に失敗してもユーザーレコードは一切作成されません（作成は単一のINSERT）。
func (m *Manager) ValidateRegistration(ctx context.Context, csrfCookie, csrfField string, input RegistrationInput) (uuid.UUID, error) {
	if err := VerifyCSRF(csrfCookie, csrfField); err != nil {
		return uuid.Nil, err
	}

	if l := len(input.Username); l < UsernameMinLen || l > UsernameMaxLen {
		return uuid.Nil, &fieldLengthError{field: "username", min: UsernameMinLen, max: UsernameMaxLen}
	}
	if l := len(input.DisplayName); l < DisplayNameMinLen || l > DisplayNameMaxLen {
		return uuid.Nil, &fieldLengthError{field: "display name", min: DisplayNameMinLen, max: DisplayNameMaxLen}
	}
	if input.Email != input.EmailConfirmation {
		return uuid.Nil, ErrEmailMismatch
	}
	if input.Password != input.PasswordConfirmation {
		return uuid.Nil, ErrPasswordMismatch
	}
	if l := len(input.Password); l < PasswordMinLen || l > PasswordMaxLen {
		return uuid.Nil, &fieldLengthError{field: "password", min: PasswordMinLen, max: PasswordMaxLen}
	}

	// 事前チェック。最終的な一意性の保証はストアの制約に委ねる
	if _, err := m.users.FindByUsername(ctx, input.Username); err == nil {
		return uuid.Nil, ErrUsernameTaken
	} else if !errors.Is(err, users.ErrNotFound) {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hashing password: %w", err)
	}

	id, err := m.users.Create(ctx, &users.User{
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		Email:        input.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, users.ErrUsernameTaken) {
			return uuid.Nil, ErrUsernameTaken
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return id, nil
}

// IssueSession はセッショントークンをユーザーIDに紐付けて保存し、セッションクッキーを設定します。
// 同一ユーザーの既存セッションは無効化しません。
func (m *Manager) IssueSession(c *gin.Context, userID uuid.UUID, sessionToken string) error {
	ctx := c.Request.Context()
	if err := m.sessions.Put(ctx, sessionToken, userID, maxSessionLifetime); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, sessionToken, SessionMaxAgeSeconds(), "/", "", m.secureCookies, true)
	return nil
}

// CurrentUserID は現在のリクエストのセッションクッキーからユーザーIDを解決します。
// クッキーなし・未知・期限切れのトークンはエラーではなく ok=false を返します（古いクッキーは
// 障害ではなくログアウト状態として扱う）。エラーはストア障害の場合のみです。
func (m *Manager) CurrentUserID(c *gin.Context) (uuid.UUID, bool, error) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie == "" {
		return uuid.Nil, false, nil
	}

	userID, ok, err := m.sessions.Get(c.Request.Context(), cookie)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return uuid.Nil, false, nil
	}
	return userID, true, nil
}

// CurrentProfile は現在のセッションのユーザープロフィールを返します。
// ログインしていない場合は ok=false を返します。
func (m *Manager) CurrentProfile(c *gin.Context) (*users.Profile, bool, error) {
	userID, ok, err := m.CurrentUserID(c)
	if err != nil || !ok {
		return nil, false, err
	}

	profile, err := m.users.FetchProfile(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			// セッションはあるがユーザーが消えている場合もログアウト状態に落とす
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return profile, true, nil
}

// DestroySession はセッションの紐付けを削除し、クッキーを失効させます。
// セッションが存在しない場合も成功として扱います（冪等）。
func (m *Manager) DestroySession(c *gin.Context) error {
	cookie, err := c.Cookie(SessionCookieName)
	if err == nil && cookie != "" {
		if err := m.sessions.Delete(c.Request.Context(), cookie); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", m.secureCookies, true)
	return nil
}
