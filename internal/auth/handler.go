package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-sessions/internal/token"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーIDを共有するためのキーです。
const ContextUserKey = "auth.user"

// 成功時の応答文言。303で"/"へリダイレクトしつつ本文にも載せます。
const (
	loginSuccessMessage  = "Login Successful"
	signupSuccessMessage = "Registration Successful"
)

// LoginPage は GET /login のハンドラーです。CSRFトークンを発行してフォームを描画します。
func (m *Manager) LoginPage(c *gin.Context) {
	m.renderForm(c, "login.html", "")
}

// SignupPage は GET /signup のハンドラーです。CSRFトークンを発行してフォームを描画します。
func (m *Manager) SignupPage(c *gin.Context) {
	m.renderForm(c, "signup.html", "")
}

// Login は POST /login のハンドラーです。
// CSRF検証 → 資格情報検証 → トークン生成 → セッション発行 → リダイレクトの順で処理し、
// どこかで失敗したらセッションを作らずにフォームへエラー文言を返します。
func (m *Manager) Login(c *gin.Context) {
	csrfCookie, csrfField := csrfPair(c)
	username := c.PostForm("username")
	password := c.PostForm("password")

	userID, err := m.ValidateLogin(c.Request.Context(), csrfCookie, csrfField, username, password)
	if err != nil {
		m.renderFormError(c, "login.html", err)
		return
	}

	sessionToken, err := token.New()
	if err != nil {
		log.Printf("token generation failed: %v", err)
		m.renderFormError(c, "login.html", err)
		return
	}
	if err := m.IssueSession(c, userID, sessionToken); err != nil {
		log.Printf("session issue failed: %v", err)
		m.renderFormError(c, "login.html", err)
		return
	}

	redirectWithMessage(c, "/", loginSuccessMessage)
}

// Signup は POST /signup のハンドラーです。
func (m *Manager) Signup(c *gin.Context) {
	csrfCookie, csrfField := csrfPair(c)
	input := RegistrationInput{
		Username:             c.PostForm("username"),
		DisplayName:          c.PostForm("display"),
		Email:                c.PostForm("email"),
		EmailConfirmation:    c.PostForm("email_confirmation"),
		Password:             c.PostForm("password"),
		PasswordConfirmation: c.PostForm("password_confirmation"),
	}

	userID, err := m.ValidateRegistration(c.Request.Context(), csrfCookie, csrfField, input)
	if err != nil {
		m.renderFormError(c, "signup.html", err)
		return
	}

	sessionToken, err := token.New()
	if err != nil {
		log.Printf("token generation failed: %v", err)
		m.renderFormError(c, "signup.html", err)
		return
	}
	if err := m.IssueSession(c, userID, sessionToken); err != nil {
		log.Printf("session issue failed: %v", err)
		m.renderFormError(c, "signup.html", err)
		return
	}

	redirectWithMessage(c, "/", signupSuccessMessage)
}

// Logout は POST /logout のハンドラーです。
// ログアウトも状態変更なので、他のフォームと同じダブルサブミット検証を通します。
func (m *Manager) Logout(c *gin.Context) {
	csrfCookie, csrfField := csrfPair(c)
	if err := VerifyCSRF(csrfCookie, csrfField); err != nil {
		c.String(http.StatusForbidden, UserMessage(err))
		return
	}

	if err := m.DestroySession(c); err != nil {
		log.Printf("session destroy failed: %v", err)
		c.String(http.StatusInternalServerError, UserMessage(err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// RequireSession はセッションを検証するミドルウェアを返します。
// 未ログインの場合は redirectPath へ303でリダイレクトします。
func (m *Manager) RequireSession(redirectPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok, err := m.CurrentUserID(c)
		if err != nil {
			log.Printf("session validation failed: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !ok {
			c.Redirect(http.StatusSeeOther, redirectPath)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, userID)
		c.Next()
	}
}

// UserData は GET /api/user のハンドラーです。
// ログインしていない場合はエラーではなく user: null を返します。
func (m *Manager) UserData(c *gin.Context) {
	profile, ok, err := m.CurrentProfile(c)
	if err != nil {
		log.Printf("fetching user data failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "STORE_UNAVAILABLE",
			"message": UserMessage(err),
		})
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// renderForm はCSRFトークンを発行してフォームページを描画します。
func (m *Manager) renderForm(c *gin.Context, templateName, result string) {
	t, err := m.IssueCSRFToken(c)
	if err != nil {
		log.Printf("csrf token generation failed: %v", err)
		c.String(http.StatusInternalServerError, UserMessage(err))
		return
	}
	c.HTML(http.StatusOK, templateName, gin.H{
		"CSRFToken": t,
		"Result":    result,
	})
}

// renderFormError は失敗した送信に対してエラー文言付きでフォームを再描画します。
// 再送信できるよう新しいCSRFトークンを発行し直します。
func (m *Manager) renderFormError(c *gin.Context, templateName string, err error) {
	t, tokenErr := m.IssueCSRFToken(c)
	if tokenErr != nil {
		log.Printf("csrf token generation failed: %v", tokenErr)
		c.String(http.StatusInternalServerError, UserMessage(tokenErr))
		return
	}
	c.HTML(statusFor(err), templateName, gin.H{
		"CSRFToken": t,
		"Result":    UserMessage(err),
	})
}

// statusFor はエラー種別をHTTPステータスに対応付けます。
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrCSRFMismatch):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUsernameTaken),
		errors.Is(err, ErrEmailMismatch),
		errors.Is(err, ErrPasswordMismatch),
		errors.Is(err, ErrFieldLength):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// redirectWithMessage は Location ヘッダー付きの303を返しつつ本文に文言を載せます。
func redirectWithMessage(c *gin.Context, location, message string) {
	c.Header("Location", location)
	c.String(http.StatusSeeOther, message)
}
