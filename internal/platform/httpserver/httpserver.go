package httpserver

import (
	"net/http"
	"time"
)

// New builds the portal's HTTP server. Timeouts are generous enough for
// form submissions but bound slow-client connections.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
