package middleware

import (
	"net/http"

	"housemonitor/internal/security"
)

// APIKeyHeader carries the sensor node shared secret.
const APIKeyHeader = "X-Api-Key"

// RequireAPIKey rejects requests whose X-Api-Key does not match with 401 and an empty body.
// It runs before any method or body check.
func RequireAPIKey(verifier *security.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !verifier.VerifyServiceKey(r.Header.Get(APIKeyHeader)) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
