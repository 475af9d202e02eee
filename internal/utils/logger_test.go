package utils

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	logger := NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/quizzes/:id", func(c *gin.Context) {
		GetLoggerFromContext(c, NewDiscardLogger()).Info("inside handler")
		c.Status(http.StatusNotFound)
	})

	t.Run("generates a request id", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/quizzes/q1", nil))

		id := w.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		assert.Contains(t, buf.String(), "request_id="+id)
		assert.Contains(t, buf.String(), "level=WARN")
		assert.Contains(t, buf.String(), "path=/quizzes/:id")
	})

	t.Run("keeps the caller's request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/quizzes/q1", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
		assert.Contains(t, buf.String(), "inside handler")
		assert.Contains(t, buf.String(), "request_id=abc-123")
	})
}

func TestGetLoggerFromContextFallback(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := NewDiscardLogger()
	assert.Same(t, fallback, GetLoggerFromContext(c, fallback))
}
