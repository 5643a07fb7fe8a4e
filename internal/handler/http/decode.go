package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
)

// maxBodyBytes bounds request bodies; the largest valid movie is far below.
const maxBodyBytes = 64 << 10

// decodeJSON reads one JSON object from the request body into dst.
// Validation is left to the service.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.InvalidInput(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}
