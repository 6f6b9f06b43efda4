package routes

import (
	"net/http"

	"github.com/meetingnexus/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetSessionGraphHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	sess, ok := app.Controller.Lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, sess.Snapshot())
}
