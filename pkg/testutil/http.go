// Package testutil provides the request helpers the handler tests share.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// NewRequest builds a bodyless request for the country endpoints; the API
// surface carries all input in the path and query string.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// DoRequest runs one request through the handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}
