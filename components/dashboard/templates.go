package dashboard

import (
	"embed"
	"io"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var pageTemplates embed.FS

// Renderer executes a named page template. RenderPage passes the page
// payload as data and streams the HTML to out.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// NewTemplateRenderer loads the sales dashboard page from the embedded
// templates directory.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(pageTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}
