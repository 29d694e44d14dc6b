package middleware

import (
	"io"
	"net/http"
)

// bodies larger than this are not drained, the connection is closed instead
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest reads what is left of the request body after the
// handler ran, so the keep-alive connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil || r.Body == http.NoBody {
				return
			}
			_, _ = io.CopyN(io.Discard, r.Body, maxDrainBytes)
			_ = r.Body.Close()
		})
	}
}
