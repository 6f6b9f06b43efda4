package routes

import (
	"net/http"
	"sort"

	"github.com/meetingnexus/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetSessionsHandler(c echo.Context) error {
	type response struct {
		Sessions []string `json:"sessions"`
	}

	app := c.(*middleware.AppContext).App
	ids := app.Controller.SessionIDs()
	sort.Strings(ids)

	return c.JSON(http.StatusOK, response{Sessions: ids})
}
