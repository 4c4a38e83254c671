package middleware

import (
	"compress/gzip"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/basketful/storefront/internal/infrastructure/config"
	"github.com/basketful/storefront/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newEngine(t *testing.T, cfg *config.Config, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := New(cfg, zaptest.NewLogger(t))
	r := gin.New()
	r.Use(m.RequestID(), m.Recovery(), m.Security(), m.CORS(), m.Compression(), m.ErrorHandler())
	r.GET("/ping", handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pong": true})
}

func TestRequestID(t *testing.T) {
	r := newEngine(t, &config.Config{}, ok)

	t.Run("GeneratedWhenAbsent", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
	})

	t.Run("EchoesIncoming", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rec := serve(r, req)
		assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		env      string
		wantHSTS bool
	}{
		{env: "development", wantHSTS: false},
		{env: "production", wantHSTS: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := &config.Config{App: config.AppConfig{Environment: tt.env}}
			rec := serve(newEngine(t, cfg, ok), httptest.NewRequest(http.MethodGet, "/ping", nil))

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
			assert.Equal(t, tt.wantHSTS, rec.Header().Get("Strict-Transport-Security") != "")
		})
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{"app error keeps its code", errors.NewNotFoundError("dish"), http.StatusNotFound, errors.CodeNotFound},
		{"plain error becomes internal", stderrors.New("boom"), http.StatusInternalServerError, errors.CodeInternal},
		{"deadline becomes unavailable", context.DeadlineExceeded, http.StatusServiceUnavailable, errors.CodeServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(t, &config.Config{}, func(c *gin.Context) {
				_ = c.Error(tt.err)
				c.Abort()
			})

			rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			var body errors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, rec.Header().Get("X-Request-ID"), body.Error.RequestID)
		})
	}
}

func TestRecovery(t *testing.T) {
	r := newEngine(t, &config.Config{}, func(c *gin.Context) {
		panic("handler exploded")
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")
}

func TestTimeoutBoundsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(&config.Config{}, zaptest.NewLogger(t))
	r := gin.New()
	r.Use(m.ErrorHandler(), m.Timeout(10*time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
		_ = c.Error(c.Request.Context().Err())
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORS(t *testing.T) {
	cfg := &config.Config{
		App:    config.AppConfig{Environment: "production"},
		Server: config.ServerConfig{EnableCORS: true, AllowedOrigins: []string{"https://shop.example"}},
	}
	r := newEngine(t, cfg, ok)

	t.Run("AllowedOrigin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://shop.example")
		rec := serve(r, req)
		assert.Equal(t, "https://shop.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("ForeignOrigin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := serve(r, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCompression(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{EnableCompression: true}}
	r := newEngine(t, cfg, ok)
	r.GET("/empty", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.HEAD("/ping", ok)

	decoders := map[string]func(io.Reader) (io.Reader, error){
		"br": func(r io.Reader) (io.Reader, error) { return brotli.NewReader(r), nil },
		"gzip": func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		},
	}

	tests := []struct {
		name           string
		method         string
		path           string
		acceptEncoding string
		wantEncoding   string
		wantStatus     int
	}{
		{name: "Brotli", method: http.MethodGet, path: "/ping", acceptEncoding: "br", wantEncoding: "br", wantStatus: http.StatusOK},
		{name: "BrotliPreferred", method: http.MethodGet, path: "/ping", acceptEncoding: "gzip, deflate, br", wantEncoding: "br", wantStatus: http.StatusOK},
		{name: "Gzip", method: http.MethodGet, path: "/ping", acceptEncoding: "gzip", wantEncoding: "gzip", wantStatus: http.StatusOK},
		{name: "BrotliRefused", method: http.MethodGet, path: "/ping", acceptEncoding: "br;q=0, gzip", wantEncoding: "gzip", wantStatus: http.StatusOK},
		{name: "Identity", method: http.MethodGet, path: "/ping", wantStatus: http.StatusOK},
		{name: "NoContent", method: http.MethodGet, path: "/empty", acceptEncoding: "br", wantStatus: http.StatusNoContent},
		{name: "Head", method: http.MethodHead, path: "/ping", acceptEncoding: "br", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}

			rec := serve(r, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantEncoding, rec.Header().Get("Content-Encoding"))
			if tt.wantEncoding == "" {
				if tt.wantStatus == http.StatusNoContent {
					assert.Zero(t, rec.Body.Len())
				}
				return
			}

			assert.Contains(t, rec.Header().Values("Vary"), "Accept-Encoding")
			reader, err := decoders[tt.wantEncoding](rec.Body)
			require.NoError(t, err)
			body, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.JSONEq(t, `{"pong":true}`, string(body))
		})
	}
}

func TestCompressionDisabled(t *testing.T) {
	r := newEngine(t, &config.Config{}, ok)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Accept-Encoding", "br")

	rec := serve(r, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.JSONEq(t, `{"pong":true}`, rec.Body.String())
}

func TestNegotiateEncoding(t *testing.T) {
	assert.Equal(t, "", negotiateEncoding(""))
	assert.Equal(t, "", negotiateEncoding("identity"))
	assert.Equal(t, "gzip", negotiateEncoding("GZIP;q=0.5"))
	assert.Equal(t, "br", negotiateEncoding("*"))
	assert.Equal(t, "gzip", negotiateEncoding("br;q=0, *"))
	assert.Equal(t, "", negotiateEncoding("br;q=0, gzip;q=0"))
}
