package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fancystore/storeadmin/pkg/logger"
)

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	h := RequestLogging(logger.NewWithWriter("test", "debug", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
		_, _ = w.Write([]byte("hello"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rr.Header().Get(CorrelationHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, seen, line["correlation_id"])
	assert.Equal(t, float64(200), line["status"])
	assert.Equal(t, float64(5), line["bytes"])
}

func TestRequestLogging_KeepsIncomingCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	h := RequestLogging(logger.NewWithWriter("test", "info", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	req.Header.Set(CorrelationHeader, "upstream-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "upstream-1", rr.Header().Get(CorrelationHeader))
	assert.Contains(t, buf.String(), `"correlation_id":"upstream-1"`)
}

func TestRequestLogging_LevelByOutcome(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		level  string
	}{
		{"server error", "/api/products", http.StatusServiceUnavailable, "ERROR"},
		{"client error", "/api/products", http.StatusBadRequest, "WARN"},
		{"readiness check", "/health/ready", http.StatusOK, "DEBUG"},
		{"failing readiness check", "/health/ready", http.StatusServiceUnavailable, "ERROR"},
		{"scrape", "/metrics", http.StatusOK, "DEBUG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := RequestLogging(logger.NewWithWriter("test", "debug", &buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.level, line["level"])
		})
	}
}

func TestAccessLevel_InfoByDefault(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, accessLevel("/api/admin/orders", http.StatusOK))
}
