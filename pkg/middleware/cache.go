package middleware

import (
	"fmt"
	"net/http"
)

// ImmutableCache marks successful GET and HEAD responses as publicly cacheable
// for maxAge seconds. Only use it on routes whose content never changes under
// the same URL. Error responses are sent with no-store so a transient 503 or a
// 404 for a not-yet-visible object is never cached.
func ImmutableCache(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d, immutable", maxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(&cacheWriter{ResponseWriter: w, value: value}, r)
		})
	}
}

type cacheWriter struct {
	http.ResponseWriter
	value       string
	wroteHeader bool
}

func (w *cacheWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		if code >= 200 && code < 300 {
			w.Header().Set("Cache-Control", w.value)
		} else {
			w.Header().Set("Cache-Control", "no-store")
		}
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func (w *cacheWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
