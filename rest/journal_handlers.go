package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rebang/di"
	"rebang/usecase/journal_usecase"
)

const jsonFeedContentType = "application/feed+json; charset=utf-8"

func registerJournalRoutes(e *echo.Echo, container *di.ApplicationComponents) {
	e.GET("/journal-tech", handleJournalFeed(container))
}

// handleJournalFeed serves the merged tech journal as a JSON Feed. It is
// consumed through the same collaborator contract as every other route, so
// format=json is accepted and ignored.
func handleJournalFeed(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := journal_usecase.ClampLimit(c.QueryParam("limit"))
		feed, err := container.JournalUsecase.BuildFeed(c.Request().Context(), limit)
		if err != nil {
			return handleFeedError(c, err, "journal_feed")
		}
		c.Response().Header().Set(echo.HeaderContentType, jsonFeedContentType)
		return c.JSON(http.StatusOK, feed)
	}
}
