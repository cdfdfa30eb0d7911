package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"blog_backend/internal/platform/config"
)

func TestNew(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		l, err := New(config.ServerConfig{Env: env})
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func newRouter(l *zap.Logger, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(l))
	r.GET("/ping", func(c *gin.Context) {
		c.Status(status)
	})
	return r
}

func TestRequestLogger_GeneratesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRouter(zap.New(core), http.StatusOK)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/ping", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
}

func TestRequestLogger_ReusesInboundID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := newRouter(zap.New(core), http.StatusOK)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", logs.All()[0].ContextMap()["request_id"])
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		core, logs := observer.New(zapcore.DebugLevel)
		r := newRouter(zap.New(core), tt.status)

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, tt.level, logs.All()[0].Level, "status %d", tt.status)
	}
}

func TestFromContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	FromContext(c, l).Info("no id")
	c.Set(ContextRequestID, "rid")
	FromContext(c, l).Info("with id")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "request_id")
	assert.Equal(t, "rid", entries[1].ContextMap()["request_id"])
}
