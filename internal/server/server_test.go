package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-compass/internal/roadmap"
	"github.com/jonathan/career-compass/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth(t *testing.T) {
	s, _, _, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := doRequest(s, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestWithCORS(t *testing.T) {
	s, _, _, _, _, _ := newTestServer()
	handler := s.withCORS(s.routes())

	req := httptest.NewRequest(http.MethodOptions, "/chat/message", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWithRateLimit_DeniesOverLimit(t *testing.T) {
	s, _, _, _, _, _ := newTestServer()
	s.rateLimiter = ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Hour, // no refill during the test
	})
	defer s.rateLimiter.Stop()

	handler := s.withRateLimit(s.routes())
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health/x", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		require.NotEqual(t, http.StatusTooManyRequests, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/health/x", nil)
	req.RemoteAddr = "9.9.9.9:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestExtractClientID(t *testing.T) {
	s, _, _, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "192.168.1.10:54321"
	assert.Equal(t, "192.168.1.10", s.extractClientID(req))

	req.RemoteAddr = "no-port"
	assert.Equal(t, "no-port", s.extractClientID(req))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&roadmap.ErrWeekOutOfRange{Week: 9, Total: 4}))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&roadmap.ErrRoadmapNotFound{ID: uuid.New()}))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&ErrResumeNotFound{ResumeID: uuid.New()}))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrValidation{Field: "x", Message: "y"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(assert.AnError))
}
