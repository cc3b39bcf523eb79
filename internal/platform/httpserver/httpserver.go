// Package httpserver builds the service's http.Server from config. The
// read-header timeout guards the accept path; refresh requests carry their own
// per-request deadline via middleware.
package httpserver

import (
	"net/http"

	"atlas/internal/platform/config"
)

// New builds the server for the configured listen address.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
