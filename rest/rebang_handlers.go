package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rebang/config"
	"rebang/di"
	"rebang/domain"
	"rebang/usecase/items_usecase"
)

type menuResponse struct {
	Version     int               `json:"version"`
	Categories  []domain.Category `json:"categories"`
	GeneratedAt string            `json:"generatedAt"`
}

type routesResponse struct {
	GeneratedAt string              `json:"generatedAt"`
	Routes      []domain.RouteEntry `json:"routes"`
}

func registerRebangRoutes(g *echo.Group, container *di.ApplicationComponents, cfg *config.Config) {
	g.GET("/feed", handleFeed(container, cfg))
	g.GET("/items", handleItems(container, cfg))
	g.GET("/rising", handleRising(container, cfg))
	g.GET("/image", handleImage(container))
	g.GET("/menu", handleMenu(container))
	g.GET("/routes", handleRoutes(container))
}

func handleFeed(container *di.ApplicationComponents, cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		limit := domain.ClampLimit(c.QueryParam("limit"))
		res, err := container.FetchFeedUsecase.FetchFollowing(
			c.Request().Context(),
			collaboratorOrigin(cfg),
			c.QueryParam("path"),
			limit,
		)
		if err != nil {
			return handleFeedError(c, err, "fetch_following")
		}
		return c.JSON(http.StatusOK, res)
	}
}

func handleItems(container *di.ApplicationComponents, cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		res, err := container.ItemsUsecase.Items(c.Request().Context(), collaboratorOrigin(cfg), items_usecase.ItemsQuery{
			Category: c.QueryParam("category"),
			Tab:      c.QueryParam("tab"),
			Sub:      c.QueryParam("sub"),
			Limit:    domain.ClampLimit(c.QueryParam("limit")),
		})
		if err != nil {
			return handleFeedError(c, err, "items")
		}
		return c.JSON(http.StatusOK, res)
	}
}

func handleRising(container *di.ApplicationComponents, cfg *config.Config) echo.HandlerFunc {
	return func(c echo.Context) error {
		seed := uint32(1)
		if n, ok := domain.ParseLeadingNumber(c.QueryParam("seed")); ok && n != 0 {
			seed = domain.Uint32Bits(n)
		}
		res := container.ItemsUsecase.Rising(
			c.Request().Context(),
			collaboratorOrigin(cfg),
			seed,
			domain.ClampLimit(c.QueryParam("limit")),
		)
		return c.JSON(http.StatusOK, res)
	}
}

func handleMenu(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		menu := container.MenuUsecase.Menu()
		return c.JSON(http.StatusOK, menuResponse{
			Version:     menu.Version,
			Categories:  menu.Categories,
			GeneratedAt: generatedAt(),
		})
	}
}

func handleRoutes(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, routesResponse{
			GeneratedAt: generatedAt(),
			Routes:      container.MenuUsecase.Routes(),
		})
	}
}
