package httputils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"researchhub/researchhub/utils/apperrors"
)

// MaxBodyBytes bounds JSON request bodies. Handlers wrap r.Body with
// http.MaxBytesReader before decoding.
const MaxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// DecodeJSON reads the request body into dst. Malformed or empty bodies
// come back as a 400 AppError.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.BadRequest("request body is empty")
		case errors.As(err, &maxErr):
			return apperrors.BadRequest("request body too large")
		default:
			return apperrors.BadRequest("invalid JSON body").WithCause(err)
		}
	}
	return nil
}

// QueryInt parses an optional non-negative integer query parameter.
func QueryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation(fmt.Sprintf("%s must be an integer", key)).
			WithFields(map[string]string{key: "must be an integer"})
	}
	if n < 0 {
		return 0, apperrors.Validation(fmt.Sprintf("%s must not be negative", key)).
			WithFields(map[string]string{key: "must not be negative"})
	}
	return n, nil
}
