package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/snapvault/gallery-server-go/internal/errors"
	"github.com/snapvault/gallery-server-go/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err)
}

// decodeJSON parses a request body into dst; malformed input is a client
// error, never a 500.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ValidationError("Request body is not valid JSON")
	}
	return nil
}
