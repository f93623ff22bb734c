package middleware

import (
	"net/http"

	servertiming "github.com/mitchellh/go-server-timing"
)

// ServerTiming attaches a timing header to the request context and writes
// the collected metrics as a Server-Timing response header.
func ServerTiming() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return servertiming.Middleware(next, nil)
	}
}
