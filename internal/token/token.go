// Package token はセッションIDとCSRFトークンに使う乱数トークンを生成します。
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes はトークンのエントロピー量（128ビット）です。
const tokenBytes = 16

// New は暗号学的に安全な乱数源から128ビットのトークンを生成し、
// クッキー・URLに安全なbase64文字列（パディングなし、22文字）として返します。
// 乱数源が利用できない場合はエラーを返します。弱い代替値には決してフォールバックしません。
func New() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("entropy source unavailable: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
