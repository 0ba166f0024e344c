package app

import (
	"io/fs"
	"mime"
	"net/http"
	"sync"

	"github.com/dentaldesk/dentaldesk/web"
)

// Minimal containers ship without /etc/mime.types, so the types served from
// the embedded asset tree are registered explicitly.
var assetTypes = map[string]string{
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
}

var registerAssetTypes = sync.OnceValue(func() error {
	for ext, typ := range assetTypes {
		if mime.TypeByExtension(ext) != "" {
			continue
		}
		if err := mime.AddExtensionType(ext, typ); err != nil {
			return err
		}
	}
	return nil
})

// staticHandler serves the embedded /static tree with an hour of browser caching.
func staticHandler() (http.Handler, error) {
	if err := registerAssetTypes(); err != nil {
		return nil, err
	}
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, err
	}
	files := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	}), nil
}
