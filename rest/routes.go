package rest

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"rebang/config"
	"rebang/di"
	middleware_custom "rebang/middleware"
	"rebang/utils/logger"
)

const (
	apiPrefix   = "/api/rebang"
	healthPath  = "/health"
	metricsPath = "/metrics"
	imagePath   = apiPrefix + "/image"
)

func RegisterRoutes(e *echo.Echo, container *di.ApplicationComponents, cfg *config.Config) {
	e.Use(middleware_custom.RequestIDMiddleware())

	if cfg.OTel.Enabled {
		e.Use(otelecho.Middleware(cfg.OTel.ServiceName, otelecho.WithSkipper(func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == healthPath || p == metricsPath
		})))
		e.Use(middleware_custom.OTelStatusMiddleware())
	}

	e.Use(middleware.Recover())

	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(cfg.Server.AllowOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware_custom.RequestIDHeader},
		MaxAge:       86400,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: cfg.Server.ReadTimeout,
		Skipper: func(c echo.Context) bool {
			// the image body streams past the handler return
			return c.Request().URL.Path == imagePath
		},
	}))

	e.Use(middleware_custom.LoggingMiddleware(logger.Logger, healthPath, metricsPath))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// images are already compressed
			return c.Request().URL.Path == imagePath || c.Request().URL.Path == metricsPath
		},
	}))

	e.GET(healthPath, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))

	registerRebangRoutes(e.Group(apiPrefix), container, cfg)
	registerJournalRoutes(e, container)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
