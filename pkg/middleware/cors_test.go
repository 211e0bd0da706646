package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func serveCORS(cfg CORSConfig, req *http.Request) *httptest.ResponseRecorder {
	handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func requestFrom(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/api/products", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS_Wildcard(t *testing.T) {
	rr := serveCORS(CORSConfig{AllowedOrigins: []string{"*"}}, requestFrom(http.MethodGet, "https://anywhere.test"))

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Vary"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCORS_WildcardWithCredentialsEchoesOrigin(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}
	rr := serveCORS(cfg, requestFrom(http.MethodGet, "https://admin.fancystore.test"))

	assert.Equal(t, "https://admin.fancystore.test", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rr.Header().Get("Vary"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_OriginMatching(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{
		"https://admin.fancystore.test/",
		"https://*.preview.fancystore.test",
	}}

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://admin.fancystore.test", true},
		{"https://pr-12.preview.fancystore.test", true},
		{"http://pr-12.preview.fancystore.test", false},
		{"https://a.b.preview.fancystore.test", false},
		{"https://preview.fancystore.test", false},
		{"https://evil.test", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			rr := serveCORS(cfg, requestFrom(http.MethodGet, tt.origin))
			if tt.allowed {
				assert.Equal(t, tt.origin, rr.Header().Get("Access-Control-Allow-Origin"))
				assert.Equal(t, "Origin", rr.Header().Get("Vary"))
			} else {
				assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
			}
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	req := requestFrom(http.MethodOptions, "https://admin.fancystore.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	rr := serveCORS(DefaultCORSConfig(), req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.Equal(t, "GET, HEAD, POST, PUT, PATCH, DELETE, OPTIONS", rr.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_PlainOptionsReachesHandler(t *testing.T) {
	rr := serveCORS(DefaultCORSConfig(), requestFrom(http.MethodOptions, ""))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestCORS_Defaults(t *testing.T) {
	rr := serveCORS(CORSConfig{AllowedOrigins: []string{"*"}}, requestFrom(http.MethodGet, ""))

	assert.Equal(t, "Accept, Content-Type, X-Correlation-ID, X-Operator-ID", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rr.Header().Get("Access-Control-Expose-Headers"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_CustomHeaders(t *testing.T) {
	cfg := CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"Content-Type", "X-Custom"},
		ExposedHeaders: []string{"X-Correlation-ID"},
		MaxAge:         600,
	}
	rr := serveCORS(cfg, requestFrom(http.MethodGet, ""))

	assert.Equal(t, "Content-Type, X-Custom", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "X-Correlation-ID", rr.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.AllowedHeaders, OperatorHeader)
	assert.Contains(t, cfg.AllowedMethods, http.MethodPut)
	assert.False(t, cfg.AllowCredentials)
}
