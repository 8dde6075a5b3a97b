package middleware

import (
	"log/slog"
	"time"

	"github.com/anonto42/socialnet/backend/internal/logging"
	"github.com/anonto42/socialnet/backend/internal/metrics"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestLogger attaches a request-scoped logger and request id to the request context and writes
// one line per request once the response is known.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			reqLogger := base.With(
				slog.String("request_id", requestID),
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("remote_addr", c.RealIP()),
			)
			ctx := logging.WithLogger(req.Context(), reqLogger)
			ctx = logging.WithRequestID(ctx, requestID)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				// let the error handler write the response so the status below is the real one
				c.Error(err)
			}

			attrs := []any{
				slog.Int("status", c.Response().Status),
				slog.Duration("duration", time.Since(start)),
			}
			if userID, ok := UserIDFromContext(c); ok {
				attrs = append(attrs, slog.Uint64("user_id", uint64(userID)))
			}
			reqLogger.Info("request completed", attrs...)
			return nil
		}
	}
}

// HTTPMetrics records request counts and latencies by matched route.
func HTTPMetrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.ObserveHTTP(c.Request().Method, route, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
