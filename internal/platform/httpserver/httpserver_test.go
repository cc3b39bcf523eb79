package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"atlas/internal/platform/config"
)

func TestNewUsesConfig(t *testing.T) {
	cfg := config.Config{
		Addr:              ":9090",
		ReadHeaderTimeout: 7 * time.Second,
	}
	handler := http.NewServeMux()

	srv := New(cfg, handler)

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 7*time.Second, srv.ReadHeaderTimeout)
	assert.Same(t, handler, srv.Handler.(*http.ServeMux))
}
