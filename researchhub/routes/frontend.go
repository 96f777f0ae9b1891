package routes

import (
	"bytes"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
)

const frontendMissing = "Frontend not built. Run 'npm run build' in the frontend directory."

// FrontendHandler serves the built single-page app from fsys. Unknown paths
// fall back to index.html so client-side routes survive a reload. A nil fsys
// or one without index.html yields 503.
func FrontendHandler(fsys fs.FS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fsys != nil {
			name := strings.TrimPrefix(path.Clean("/"+chi.URLParam(r, "*")), "/")
			if name == "" {
				name = "index.html"
			}
			if serveFile(w, r, fsys, name) || serveFile(w, r, fsys, "index.html") {
				return
			}
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, frontendMissing)
	})
}

func serveFile(w http.ResponseWriter, r *http.Request, fsys fs.FS, name string) bool {
	f, err := fsys.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	if rs, ok := f.(io.ReadSeeker); ok {
		http.ServeContent(w, r, info.Name(), info.ModTime(), rs)
		return true
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), bytes.NewReader(data))
	return true
}
