package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	applog "expensetracker/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	m := NewMiddleware(applog.New(applog.Config{Level: slog.LevelInfo, Output: &buf}), nil)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/tools/nope", nil))

	assert.True(t, strings.HasPrefix(seen, "req_"))
	assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status_code=404")
	assert.Equal(t, int64(1), m.GetMetrics().TotalRequests)
}

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	m := NewMiddleware(applog.New(applog.Config{Output: &bytes.Buffer{}}), nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "abc", rr.Header().Get(HeaderRequestID))
}

func TestGenerateRequestIDIsUnique(t *testing.T) {
	assert.NotEqual(t, GenerateRequestID(), GenerateRequestID())
}
