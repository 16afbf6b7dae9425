package server

import (
	"net/http"
	"os"
	"path/filepath"
)

// handleSPA serves the static front-end from dir. Paths that don't name a
// real file fall back to index.html so client-side routes survive a reload.
func handleSPA(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		// Clean against the rooted path so ".." can't escape dir.
		name := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
