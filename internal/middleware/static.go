package middleware

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cashora/backend/internal/services"
)

// DocumentServer serves uploaded receipts and ID cards from dir. Unknown
// names and directories answer 404.
func DocumentServer(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Clean("/" + r.URL.Path)
		if name == "/" || strings.Contains(name, "..") {
			services.SendErrorResponse(w, "Document not found", http.StatusNotFound, nil)
			return
		}

		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			services.SendErrorResponse(w, "Document not found", http.StatusNotFound, nil)
			return
		}

		w.Header().Set("Cache-Control", "private, max-age=3600")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		http.ServeFile(w, r, path)
	})
}
