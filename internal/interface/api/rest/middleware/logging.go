package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const maxLoggedBody = 4 << 10

// RequestLogGin logs one line per request after the handler chain ran,
// including the identity the auth middleware attached. Ops routes are
// skipped; upload and credential bodies are never logged.
func RequestLogGin(logger *zap.Logger, mCounter *prometheus.CounterVec) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method == http.MethodOptions ||
			strings.HasSuffix(path, "/healthz") ||
			strings.HasSuffix(path, "/metrics") {
			c.Next()
			return
		}

		start := time.Now()
		body := snapshotBody(c)

		c.Next()

		if mCounter != nil {
			mCounter.WithLabelValues("app_requests_total").Inc()
		}

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int("response_bytes", c.Writer.Size()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if uid := c.GetString(CtxUserID); uid != "" {
			fields = append(fields, zap.String("user_id", uid))
		}
		if body != "" {
			fields = append(fields, zap.String("body", body))
		}

		logger.Info("HTTP request", fields...)
	}
}

// snapshotBody captures a small request body for the log line and puts it
// back for the handler. File uploads are not buffered and login/register
// payloads carry passwords, so both are replaced with a marker.
func snapshotBody(c *gin.Context) string {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return ""
	}
	if strings.Contains(c.Request.URL.Path, "/auth/") {
		return "<credentials omitted>"
	}
	if strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data") {
		return "<file upload omitted>"
	}

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, io.LimitReader(c.Request.Body, maxLoggedBody))
	c.Request.Body.Close()
	c.Request.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))

	return buf.String()
}
