// Package assets serves the console's static files embedded via go:embed.
// Each file gets a short content hash so templates can emit cache-busting URLs
// and the file server can mark versioned requests immutable.
package assets

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
)

//go:embed static
var staticFS embed.FS

// Prefix is the URL path the file server is mounted under.
const Prefix = "/console/static/"

// versions maps a file name under static/ to the first 8 hex characters of its SHA-256.
var versions = map[string]string{}

func init() {
	// Register MIME types that may not be in the default database.
	_ = mime.AddExtensionType(".woff2", "font/woff2")
	_ = mime.AddExtensionType(".map", "application/json")

	err := fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := staticFS.ReadFile(p)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(data)
		versions[strings.TrimPrefix(p, "static/")] = hex.EncodeToString(sum[:])[:8]
		return nil
	})
	if err != nil {
		slog.Error("failed to index static assets", "error", err)
	}
}

// URL returns the versioned URL for an asset, e.g. "/console/static/console.css?v=1a2b3c4d".
// Unknown names get an unversioned URL so a missing file shows up as a 404.
func URL(name string) string {
	v, ok := versions[name]
	if !ok {
		return Prefix + name
	}
	return Prefix + name + "?v=" + v
}

// mimeFromExt returns the MIME type for a file extension.
// Falls back to the Go standard library's MIME type database,
// then to "application/octet-stream" if unknown.
func mimeFromExt(ext string) string {
	switch ext {
	case ".js", ".mjs":
		return "application/javascript"
	case ".css":
		return "text/css; charset=utf-8"
	case ".woff2":
		return "font/woff2"
	case ".svg":
		return "image/svg+xml"
	case ".map":
		return "application/json"
	default:
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
		return "application/octet-stream"
	}
}

// FileServer returns an http.Handler that serves embedded assets from static/.
// Requests carrying the current version get immutable cache headers; everything
// else gets no-cache. The handler expects paths relative to the static root
// (strip Prefix before calling).
func FileServer() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("assets: failed to create sub filesystem: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		if name == "" || strings.HasSuffix(name, "/") {
			http.NotFound(w, r)
			return
		}

		// Set content type explicitly for known extensions
		if ext := strings.ToLower(path.Ext(name)); ext != "" {
			w.Header().Set("Content-Type", mimeFromExt(ext))
		}

		if v := r.URL.Query().Get("v"); v != "" && v == versions[name] {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}

		fileServer.ServeHTTP(w, r)
	})
}
