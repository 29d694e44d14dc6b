package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRequest_RequestID(t *testing.T) {
	var seen string
	handler := LogRequest()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/videos", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	rr = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/videos", nil)
	req.Header.Set(RequestIDHeader, "client-chosen-id")
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "client-chosen-id", seen)
	assert.Equal(t, "client-chosen-id", rr.Header().Get(RequestIDHeader))
}
