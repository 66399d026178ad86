package controller

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lyftr/sms-webhook/metrics"
)

// RequestLogger assigns each request an id, logs one structured line per
// request and feeds the http counter registry.
func RequestLogger(reg *metrics.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := uuid.NewString()
			c.Set("request_id", requestID)
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			path := c.Request().URL.Path
			reg.IncHTTP(path, status)

			zap.L().Info("request",
				zap.String("request_id", requestID),
				zap.String("method", c.Request().Method),
				zap.String("path", path),
				zap.Int("status", status),
				zap.Int64("latency_ms", time.Since(start).Milliseconds()))

			return nil
		}
	}
}
