package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Emirlan007/Cassini-shop-sub000/pkg/logger"
)

// SessionHeader carries the browser session id used to own guest carts and
// tag analytics events.
const SessionHeader = "X-Session-ID"

const maxSessionIDLen = 128

// Session copies the X-Session-ID header into the context. Oversized values
// are ignored rather than rejected.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(SessionHeader))
		if id == "" || len(id) > maxSessionIDLen {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, id)
		ctx = logger.WithSessionID(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionIDFromContext returns the guest session id, or "".
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}
