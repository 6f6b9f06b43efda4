package routes

import (
	"net/http"

	"github.com/meetingnexus/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetMetricsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.AiClient.GetMetrics())
}

func DeleteMetricsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	app.AiClient.ResetMetrics()
	return c.NoContent(http.StatusNoContent)
}
