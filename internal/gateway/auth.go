package gateway

import (
	"crypto/subtle"
	"net/http"
)

// authMiddleware rejects every request whose Authorization header does not
// match the shared panel secret. The comparison is constant-time; a mismatch
// short-circuits before any handler logic runs.
func authMiddleware(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !constantTimeEqual(r.Header.Get("Authorization"), apiKey) {
				writeEnvelope(w, Envelope{
					Status:  http.StatusUnauthorized,
					Message: "Authorization failed",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// constantTimeEqual compares two strings in constant time.
func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
