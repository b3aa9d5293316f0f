package middleware

import (
	"net/http"

	"github.com/snapvault/gallery-server-go/internal/httputil"
)

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err)
}
