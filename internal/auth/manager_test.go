package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/auth-sessions/internal/store/sessions"
	"github.com/yourusername/auth-sessions/internal/store/users"
)

func newTestManager() *Manager {
	return NewManager(users.NewMemoryRepository(), sessions.NewMemoryStore(), false)
}

// mustRegister はテスト用ユーザーをリポジトリへ直接登録します。
func mustRegister(t *testing.T, repo users.Repository, username, password string) uuid.UUID {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	id, err := repo.Create(context.Background(), &users.User{
		Username:     username,
		DisplayName:  username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return id
}

func TestValidateLoginSuccess(t *testing.T) {
	repo := users.NewMemoryRepository()
	m := NewManager(repo, sessions.NewMemoryStore(), false)
	id := mustRegister(t, repo, "alice", "correct horse battery")

	got, err := m.ValidateLogin(context.Background(), "tok", "tok", "alice", "correct horse battery")
	if err != nil {
		t.Fatalf("ValidateLogin returned error: %v", err)
	}
	if got != id {
		t.Fatalf("ValidateLogin = %s, want %s", got, id)
	}
}

func TestValidateLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := users.NewMemoryRepository()
	m := NewManager(repo, sessions.NewMemoryStore(), false)
	mustRegister(t, repo, "alice", "correct horse battery")

	_, wrongPassword := m.ValidateLogin(context.Background(), "tok", "tok", "alice", "wrong password")
	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPassword)
	}

	_, unknownUser := m.ValidateLogin(context.Background(), "tok", "tok", "bob", "wrong password")
	if !errors.Is(unknownUser, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknownUser)
	}

	// 文言でもユーザー不在とパスワード不一致を区別できないこと
	if UserMessage(wrongPassword) != UserMessage(unknownUser) {
		t.Fatalf("messages differ: %q vs %q", UserMessage(wrongPassword), UserMessage(unknownUser))
	}
}

func TestValidateLoginChecksCSRFBeforeCredentials(t *testing.T) {
	repo := users.NewMemoryRepository()
	m := NewManager(repo, sessions.NewMemoryStore(), false)
	mustRegister(t, repo, "alice", "correct horse battery")

	// 資格情報が正しくてもCSRF不一致なら拒否される
	_, err := m.ValidateLogin(context.Background(), "cookie-tok", "form-tok", "alice", "correct horse battery")
	if !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch, got %v", err)
	}
}

func validInput() RegistrationInput {
	return RegistrationInput{
		Username:             "alice",
		DisplayName:          "Alice",
		Email:                "alice@example.com",
		EmailConfirmation:    "alice@example.com",
		Password:             "a strong password",
		PasswordConfirmation: "a strong password",
	}
}

func TestValidateRegistrationSuccess(t *testing.T) {
	repo := users.NewMemoryRepository()
	m := NewManager(repo, sessions.NewMemoryStore(), false)

	id, err := m.ValidateRegistration(context.Background(), "tok", "tok", validInput())
	if err != nil {
		t.Fatalf("ValidateRegistration returned error: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("returned nil user id")
	}

	user, err := repo.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("created user not found: %v", err)
	}
	if user.PasswordHash == "a strong password" {
		t.Fatal("password stored in plain text")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("a strong password")) != nil {
		t.Fatal("stored hash does not verify against the password")
	}
}

func TestValidateRegistrationRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*RegistrationInput)
		wantErr error
	}{
		{"email mismatch", func(in *RegistrationInput) { in.EmailConfirmation = "other@example.com" }, ErrEmailMismatch},
		{"password mismatch", func(in *RegistrationInput) { in.PasswordConfirmation = "different" }, ErrPasswordMismatch},
		{"username too short", func(in *RegistrationInput) { in.Username = "al" }, ErrFieldLength},
		{"username too long", func(in *RegistrationInput) { in.Username = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" }, ErrFieldLength},
		{"display name too short", func(in *RegistrationInput) { in.DisplayName = "A" }, ErrFieldLength},
		{"display name too long", func(in *RegistrationInput) { in.DisplayName = "AAAAAAAAAAAAAAAAA" }, ErrFieldLength},
		{"password too short", func(in *RegistrationInput) {
			in.Password = "short"
			in.PasswordConfirmation = "short"
		}, ErrFieldLength},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := users.NewMemoryRepository()
			m := NewManager(repo, sessions.NewMemoryStore(), false)

			input := validInput()
			tc.mutate(&input)

			_, err := m.ValidateRegistration(context.Background(), "tok", "tok", input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			// 失敗時にレコードが作られていないこと
			if _, err := repo.FindByUsername(context.Background(), input.Username); !errors.Is(err, users.ErrNotFound) {
				t.Fatalf("user record observable after failed registration: %v", err)
			}
		})
	}
}

func TestValidateRegistrationUsernameTaken(t *testing.T) {
	repo := users.NewMemoryRepository()
	m := NewManager(repo, sessions.NewMemoryStore(), false)
	mustRegister(t, repo, "alice", "some password")

	_, err := m.ValidateRegistration(context.Background(), "tok", "tok", validInput())
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestValidateRegistrationCSRFFirst(t *testing.T) {
	repo := users.NewMemoryRepository()
	m := NewManager(repo, sessions.NewMemoryStore(), false)

	_, err := m.ValidateRegistration(context.Background(), "cookie-tok", "form-tok", validInput())
	if !errors.Is(err, ErrCSRFMismatch) {
		t.Fatalf("expected ErrCSRFMismatch, got %v", err)
	}
	if _, err := repo.FindByUsername(context.Background(), "alice"); !errors.Is(err, users.ErrNotFound) {
		t.Fatal("user record observable after csrf rejection")
	}
}

// sessionContext はセッションクッキー付きのテスト用コンテキストを作成します。
func sessionContext(t *testing.T, token string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		c.Request.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	return c, w
}

func TestSessionLifecycle(t *testing.T) {
	repo := users.NewMemoryRepository()
	store := sessions.NewMemoryStore()
	m := NewManager(repo, store, false)
	userID := mustRegister(t, repo, "alice", "some password")

	// 発行
	c, w := sessionContext(t, "")
	if err := m.IssueSession(c, userID, "session-token-1"); err != nil {
		t.Fatalf("IssueSession returned error: %v", err)
	}

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookieName {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("session cookie not set")
	}
	if cookie.Value != "session-token-1" {
		t.Fatalf("cookie value = %q, want session-token-1", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie is not HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("session cookie SameSite = %v, want Strict", cookie.SameSite)
	}

	// 検証
	c, _ = sessionContext(t, cookie.Value)
	got, ok, err := m.CurrentUserID(c)
	if err != nil {
		t.Fatalf("CurrentUserID returned error: %v", err)
	}
	if !ok || got != userID {
		t.Fatalf("CurrentUserID = (%s, %v), want (%s, true)", got, ok, userID)
	}

	// 破棄
	c, w = sessionContext(t, cookie.Value)
	if err := m.DestroySession(c); err != nil {
		t.Fatalf("DestroySession returned error: %v", err)
	}
	var cleared *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == SessionCookieName {
			cleared = ck
		}
	}
	if cleared == nil || cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("session cookie not cleared: %+v", cleared)
	}

	// 破棄後はセッションなし
	c, _ = sessionContext(t, cookie.Value)
	if _, ok, _ := m.CurrentUserID(c); ok {
		t.Fatal("session still valid after DestroySession")
	}
}

func TestCurrentUserIDNoCookie(t *testing.T) {
	m := newTestManager()
	c, _ := sessionContext(t, "")

	_, ok, err := m.CurrentUserID(c)
	if err != nil {
		t.Fatalf("absent cookie should not be an error: %v", err)
	}
	if ok {
		t.Fatal("resolved a session without a cookie")
	}
}

func TestCurrentUserIDStaleCookie(t *testing.T) {
	m := newTestManager()
	c, _ := sessionContext(t, "stale-token")

	_, ok, err := m.CurrentUserID(c)
	if err != nil {
		t.Fatalf("stale cookie should degrade to logged-out, got error: %v", err)
	}
	if ok {
		t.Fatal("stale token resolved to a session")
	}
}

func TestDestroySessionIdempotent(t *testing.T) {
	m := newTestManager()
	c, _ := sessionContext(t, "")

	if err := m.DestroySession(c); err != nil {
		t.Fatalf("destroying absent session returned error: %v", err)
	}
}
