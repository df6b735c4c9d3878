package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rebang/di"
)

const imageCacheControl = "public, max-age=86400"

// handleImage relays an upstream image. Errors are plain text. Only the
// content type and the caching validators are passed through.
func handleImage(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		resp, err := container.ImageProxyUsecase.ProxyImage(
			c.Request().Context(),
			c.QueryParam("url"),
			c.QueryParam("link"),
		)
		if err != nil {
			return handlePlainError(c, err, "proxy_image")
		}
		defer resp.Close()

		h := c.Response().Header()
		h.Set("Cache-Control", imageCacheControl)
		if resp.ETag != "" {
			h.Set("ETag", resp.ETag)
		}
		if resp.LastModified != "" {
			h.Set(echo.HeaderLastModified, resp.LastModified)
		}
		return c.Stream(http.StatusOK, resp.ContentType, resp.Body)
	}
}
