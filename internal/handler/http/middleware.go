package http

import (
	"net/http"
	"strings"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
)

// ContentTypeJSON rejects request bodies that are declared as something other
// than JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// MaxBodySize caps request bodies at n bytes.
func MaxBodySize(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// cartOwner is the signed-in user or, for guests, the session.
func cartOwner(r *http.Request) string {
	if id := middleware.UserIDFromContext(r.Context()); id != "" {
		return id
	}
	return middleware.SessionIDFromContext(r.Context())
}

// requestLang reads ?lang= and then the primary Accept-Language tag.
func requestLang(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return domain.NormalizeLang(lang)
	}
	accept := r.Header.Get("Accept-Language")
	if accept == "" {
		return domain.DefaultLang
	}
	tag := strings.SplitN(accept, ",", 2)[0]
	tag = strings.SplitN(tag, ";", 2)[0]
	tag = strings.SplitN(tag, "-", 2)[0]
	return domain.NormalizeLang(tag)
}
