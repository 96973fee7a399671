package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrCSRFMismatch はクッキーとフォームのCSRFトークンが一致しない（または欠落している）ことを表します。
	ErrCSRFMismatch = errors.New("csrf token mismatch")
	// ErrInvalidCredentials は認証失敗を表します。
	// ユーザー不在とパスワード不一致は意図的に区別しません（ユーザー列挙の防止）。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken はユーザー名が既に使用されていることを表します。
	ErrUsernameTaken = errors.New("username already taken")
	// ErrEmailMismatch はメールアドレスと確認欄が一致しないことを表します。
	ErrEmailMismatch = errors.New("email addresses do not match")
	// ErrPasswordMismatch はパスワードと確認欄が一致しないことを表します。
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrFieldLength はフィールド長の制約違反を表します。
	ErrFieldLength = errors.New("field length out of range")
	// ErrStoreUnavailable はストア障害を表します。リクエスト内では回復できません。
	ErrStoreUnavailable = errors.New("store unavailable")
)

// fieldLengthError はどのフィールドがどの範囲を外れたかを保持します。
// errors.Is(err, ErrFieldLength) で判別できます。
type fieldLengthError struct {
	field string
	min   int
	max   int
}

func (e *fieldLengthError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d characters", e.field, e.min, e.max)
}

func (e *fieldLengthError) Is(target error) bool {
	return target == ErrFieldLength
}

// UserMessage はエラーを内部状態を漏らさないユーザー向け文言に変換します。
// 認証失敗の文言はユーザー不在とパスワード不一致で同一です。
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrCSRFMismatch):
		return "Invalid form submission. Please reload the page and try again."
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, ErrUsernameTaken):
		return "That username is already taken."
	case errors.Is(err, ErrEmailMismatch):
		return "E-mail addresses do not match."
	case errors.Is(err, ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, ErrFieldLength):
		return err.Error()
	default:
		// ストア障害などの内部エラーは詳細を出さない
		return "Something went wrong. Please try again later."
	}
}
