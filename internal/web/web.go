// Package web serves the embedded browser UI.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static
var staticFS embed.FS

// Register mounts the UI at the root of e.
func Register(e *echo.Echo) {
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	e.GET("/", func(c echo.Context) error {
		return serveFile(c, assets, "index.html")
	})
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(assets)))))
}

func serveFile(c echo.Context, assets fs.FS, name string) error {
	content, err := fs.ReadFile(assets, name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.HTMLBlob(http.StatusOK, content)
}
