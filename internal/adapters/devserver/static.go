package devserver

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
)

const indexFile = "index.html"

var scriptTag = []byte(`<script src="` + domain.LiveReloadScriptPath + `"></script>`)

// staticHandler serves files below dir. HTML responses carry the live-reload
// script and directories resolve to their index.html.
type staticHandler struct {
	dir http.Dir
}

func (h staticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := path.Clean("/" + r.URL.Path)
	f, err := h.dir.Open(name)
	if err != nil {
		httpError(w, err)
		return
	}
	defer func(f http.File) { _ = f.Close() }(f)

	info, err := f.Stat()
	if err != nil {
		httpError(w, err)
		return
	}

	if info.IsDir() {
		if !strings.HasSuffix(r.URL.Path, "/") {
			http.Redirect(w, r, r.URL.Path+"/", http.StatusMovedPermanently)
			return
		}
		name = path.Join(name, indexFile)
		index, err := h.dir.Open(name)
		if err != nil {
			httpError(w, err)
			return
		}
		defer func() { _ = index.Close() }()
		if info, err = index.Stat(); err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		f = index
	}

	if strings.EqualFold(path.Ext(name), ".html") {
		body, err := io.ReadAll(f)
		if err != nil {
			httpError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(injectScript(body)))
		return
	}

	http.ServeContent(w, r, name, time.Time{}, f)
}

// injectScript inserts the live-reload script tag before the last </body>,
// or appends it when the document has none.
func injectScript(html []byte) []byte {
	idx := bytes.LastIndex(bytes.ToLower(html), []byte("</body>"))
	if idx < 0 {
		return append(bytes.Clone(html), scriptTag...)
	}

	out := make([]byte, 0, len(html)+len(scriptTag))
	out = append(out, html[:idx]...)
	out = append(out, scriptTag...)
	return append(out, html[idx:]...)
}

func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		http.Error(w, "404 page not found", http.StatusNotFound)
	case errors.Is(err, fs.ErrPermission):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// noCache disables browser caching so every reload fetches fresh output.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
