package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKeyHeader carries the gateway secret on every authenticated request
const APIKeyHeader = "x-api-key"

// APIKeyAuth rejects requests whose x-api-key header is absent or does
// not match the configured secret, before any other processing runs.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   "invalid or missing API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
