package upstream_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DeafMist/civic-radar/backend/internal/upstream"
)

// serve starts a test server running h and returns a client for it.
func serve(t *testing.T, h http.HandlerFunc) (*httptest.Server, *upstream.Client) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, upstream.NewClient(2 * time.Second)
}

func writeBody(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write([]byte(body))
}
