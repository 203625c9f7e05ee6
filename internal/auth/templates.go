package auth

import (
	"embed"
	"html/template"
)

const (
	registerTemplate = "register.html"
	indexTemplate    = "index.html"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates は埋め込みのHTMLテンプレートを読み込みます。gin.Engine.SetHTMLTemplate に渡してください。
func LoadTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}
