package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"whatif-sim/pkg/logger"
)

func newEngine(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(LoggingMiddleware(&LoggingConfig{
		SkipPaths: []string{"/v1/health"},
		Logger:    logger.NewWithWriter(buf, slog.LevelDebug),
	}))
	engine.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c)+"|"+RequestIDFromContext(c.Request.Context()))
	})
	engine.GET("/v1/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func TestLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(&buf)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))

	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id+"|"+id, w.Body.String())
	assert.Contains(t, buf.String(), "HTTP请求完成")
	assert.Contains(t, buf.String(), "request_id="+id)
}

func TestLoggingMiddleware_ReusesIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(&buf)

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-42|req-42", w.Body.String())
}

func TestLoggingMiddleware_SkipsPaths(t *testing.T) {
	var buf bytes.Buffer
	engine := newEngine(&buf)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Empty(t, buf.String())
}
