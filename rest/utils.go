package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"rebang/config"
	"rebang/middleware"
	"rebang/utils/errors"
	"rebang/utils/logger"
)

// isoMillis matches the generatedAt format browsers produce.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func generatedAt() string {
	return time.Now().UTC().Format(isoMillis)
}

// requestContext lists the request attributes attached to logged errors.
func requestContext(c echo.Context) map[string]interface{} {
	return map[string]interface{}{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"remote_addr": c.RealIP(),
		"user_agent":  c.Request().UserAgent(),
		"request_id":  c.Response().Header().Get(middleware.RequestIDHeader),
	}
}

// toAppError enriches err with the REST layer, or wraps anything unexpected
// as an unknown error so nothing internal reaches the client.
func toAppError(c echo.Context, err error, operation string) *errors.AppContextError {
	if appErr, ok := errors.AsAppContextError(err); ok {
		return errors.EnrichWithContext(appErr, "rest", "RESTHandler", operation, requestContext(c))
	}
	return errors.NewUnknownContextError("internal server error", "rest", "RESTHandler", operation, err, requestContext(c))
}

func logHandlerError(c echo.Context, appErr *errors.AppContextError, status int) {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)
	attrs := []any{
		"error", appErr.Error(),
		"error_code", appErr.Code,
		"operation", appErr.Operation,
		"status", status,
		"is_retryable", appErr.IsRetryable(),
	}
	if status >= http.StatusInternalServerError {
		log.ErrorContext(ctx, "REST handler error", attrs...)
		return
	}
	log.WarnContext(ctx, "REST handler error", attrs...)
}

// handleError writes {message} with the status of the error code.
func handleError(c echo.Context, err error, operation string) error {
	appErr := toAppError(c, err, operation)
	status := appErr.HTTPStatusCode()
	logHandlerError(c, appErr, status)
	return c.JSON(status, appErr.ToHTTPResponse())
}

// handleFeedError is handleError for endpoints backed by collaborator
// feeds, where a timed out collaborator is reported as a bad gateway.
func handleFeedError(c echo.Context, err error, operation string) error {
	appErr := toAppError(c, err, operation)
	status := upstreamStatus(appErr)
	logHandlerError(c, appErr, status)
	return c.JSON(status, appErr.ToHTTPResponse())
}

// handlePlainError answers in text/plain, used by the media proxy.
func handlePlainError(c echo.Context, err error, operation string) error {
	appErr := toAppError(c, err, operation)
	status := upstreamStatus(appErr)
	message := appErr.Message
	if appErr.Code == errors.CodeUnknown {
		status = http.StatusBadGateway
		message = "Image fetch failed"
	}
	logHandlerError(c, appErr, status)
	return c.String(status, message)
}

func upstreamStatus(appErr *errors.AppContextError) int {
	if appErr.Code == errors.CodeTimeout {
		return http.StatusBadGateway
	}
	return appErr.HTTPStatusCode()
}

// collaboratorOrigin is the configured feed origin. Request headers never
// influence it.
func collaboratorOrigin(cfg *config.Config) string {
	return cfg.Feed.Origin
}
