// Package logger はzapロガーの生成とリクエストログ用のGinミドルウェアを提供します。
package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"blog_backend/internal/platform/config"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// ContextRequestID is the gin context key holding the request id.
const ContextRequestID = "requestID"

// New builds a development logger for the dev environment and a production JSON logger otherwise.
func New(cfg config.ServerConfig) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if cfg.IsDevelopment() {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return l, nil
}

// RequestLogger assigns a request id (reusing an inbound X-Request-ID) and
// logs one line per request after the handler chain completes.
func RequestLogger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ContextRequestID, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			l.Error("request", fields...)
		case status >= 400:
			l.Warn("request", fields...)
		default:
			l.Info("request", fields...)
		}
	}
}

// FromContext returns l annotated with the request id of c, if any.
func FromContext(c *gin.Context, l *zap.Logger) *zap.Logger {
	if id := c.GetString(ContextRequestID); id != "" {
		return l.With(zap.String("request_id", id))
	}
	return l
}
