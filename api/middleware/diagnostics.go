package middleware

import (
	"net/http"

	"github.com/kabisoft/kabipos-backend/api/responses"
)

// Diagnostics lets internal errors carry their cause chain in the response.
// Mount it only outside production.
func Diagnostics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(responses.WithDiagnostics(r.Context())))
	})
}
