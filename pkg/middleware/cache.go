package middleware

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl marks anonymous GET responses as publicly cacheable for maxAge.
// Requests carrying credentials get "private, no-store".
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	public := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				if r.Header.Get("Authorization") != "" {
					w.Header().Set("Cache-Control", "private, no-store")
				} else {
					w.Header().Set("Cache-Control", public)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
