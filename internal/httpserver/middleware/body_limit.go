package middleware

import (
	"net/http"
)

// BodyLimit caps the request body so an oversized payload fails decoding
// instead of exhausting memory.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}
