// Package pages はサーバーサイドレンダリングするページのテンプレートとハンドラーを提供します。
package pages

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates は埋め込みテンプレートをパースして返します。
// ルーター初期化時に gin の SetHTMLTemplate へ渡します。
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}
