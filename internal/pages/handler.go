package pages

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-sessions/internal/auth"
)

// Handler はページ描画のハンドラーをまとめた構造体です。
// 認証状態の解決はリクエストごとに auth.Manager へ問い合わせます。
type Handler struct {
	auth *auth.Manager
}

// NewHandler は Handler を作成します。
func NewHandler(authManager *auth.Manager) *Handler {
	return &Handler{auth: authManager}
}

// Home は GET / のハンドラーです。ログイン状態に応じてヘッダーを出し分けます。
func (h *Handler) Home(c *gin.Context) {
	profile, ok, err := h.auth.CurrentProfile(c)
	if err != nil {
		log.Printf("resolving current user failed: %v", err)
		c.String(http.StatusInternalServerError, auth.UserMessage(err))
		return
	}

	data := gin.H{"User": nil}
	if ok {
		data["User"] = profile
	}
	c.HTML(http.StatusOK, "home.html", data)
}

// Settings は GET /settings のハンドラーです。RequireSession の内側で呼ばれる前提です。
// ログアウトフォーム用のCSRFトークンをここで発行します。
func (h *Handler) Settings(c *gin.Context) {
	profile, ok, err := h.auth.CurrentProfile(c)
	if err != nil {
		log.Printf("resolving current user failed: %v", err)
		c.String(http.StatusInternalServerError, auth.UserMessage(err))
		return
	}
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	csrfToken, err := h.auth.IssueCSRFToken(c)
	if err != nil {
		log.Printf("csrf token generation failed: %v", err)
		c.String(http.StatusInternalServerError, auth.UserMessage(err))
		return
	}
	c.HTML(http.StatusOK, "settings.html", gin.H{
		"User":      profile,
		"CSRFToken": csrfToken,
	})
}
