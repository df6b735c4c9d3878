package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"rebang/utils/logger"
)

// LoggingMiddleware logs one line per request. Health and metrics probes are
// not logged.
func LoggingMiddleware(baseLogger *slog.Logger, skipPaths ...string) echo.MiddlewareFunc {
	contextLogger := logger.NewContextLogger(baseLogger)
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			ctx := req.Context()
			res := c.Response()
			log := contextLogger.WithContext(ctx)
			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"duration_ms", duration.Milliseconds(),
				"response_size", res.Size,
				"remote_addr", c.RealIP(),
			}
			switch {
			case res.Status >= 500:
				log.ErrorContext(ctx, "request completed", attrs...)
			case res.Status >= 400:
				log.WarnContext(ctx, "request completed", attrs...)
			default:
				log.InfoContext(ctx, "request completed", attrs...)
			}

			if err != nil {
				log.ErrorContext(ctx, "request error",
					"method", req.Method,
					"path", req.URL.Path,
					"error", err,
				)
			}
			return err
		}
	}
}
