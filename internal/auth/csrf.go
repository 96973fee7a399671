package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/auth-sessions/internal/token"
)

const (
	// CSRFCookieName はCSRFトークンを保持するクッキー名です。
	CSRFCookieName = "csrf"
	// CSRFFieldName はフォームの隠しフィールド名です。クッキーと同じ値を載せます。
	CSRFFieldName = "csrf"

	// csrfCookieMaxAge はCSRFクッキーの寿命（秒）です。ページ描画ごとに上書きされます。
	csrfCookieMaxAge = 3600
)

// IssueCSRFToken は新しいCSRFトークンを発行し、クッキーに設定した上で返します。
// 返り値はフォームの隠しフィールドに埋め込みます（ダブルサブミット方式）。
// トークンはページ描画単位で発行され、セッションには紐付けません。
func (m *Manager) IssueCSRFToken(c *gin.Context) (string, error) {
	t, err := token.New()
	if err != nil {
		return "", err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CSRFCookieName, t, csrfCookieMaxAge, "/", "", m.secureCookies, true)
	return t, nil
}

// VerifyCSRF はクッキーとフォームフィールドのトークンを定数時間で比較します。
// どちらかが欠落、または不一致の場合は他のどの処理よりも先に ErrCSRFMismatch で拒否します。
func VerifyCSRF(cookieValue, fieldValue string) error {
	if cookieValue == "" || fieldValue == "" {
		return ErrCSRFMismatch
	}
	if subtle.ConstantTimeCompare([]byte(cookieValue), []byte(fieldValue)) != 1 {
		return ErrCSRFMismatch
	}
	return nil
}

// csrfPair は現在のリクエストからクッキー値とフォーム値を取り出します。
func csrfPair(c *gin.Context) (cookieValue, fieldValue string) {
	cookieValue, _ = c.Cookie(CSRFCookieName)
	fieldValue = c.PostForm(CSRFFieldName)
	return cookieValue, fieldValue
}
