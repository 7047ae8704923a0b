// Package web holds the dashboard's templates and browser assets.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates static
var assets embed.FS

// NewViews loads the embedded templates. Views are named by their path
// under templates/ without the extension, e.g. "dashboard" or
// "layouts/main".
func NewViews() (*html.Engine, error) {
	templates, err := fs.Sub(assets, "templates")
	if err != nil {
		return nil, fmt.Errorf("open templates: %w", err)
	}

	engine := html.NewFileSystem(http.FS(templates), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return engine, nil
}

// Static returns the files served under /static/.
func Static() fs.FS {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return static
}
