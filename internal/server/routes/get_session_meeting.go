package routes

import (
	"net/http"

	"github.com/meetingnexus/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetSessionMeetingHandler(c echo.Context) error {
	type response struct {
		Session      string   `json:"session"`
		IsActive     bool     `json:"isActive"`
		Participants []string `json:"participants"`
	}

	app := c.(*middleware.AppContext).App
	sess, ok := app.Controller.Lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	return c.JSON(http.StatusOK, response{
		Session:      sess.ID,
		IsActive:     sess.Active(),
		Participants: sess.Participants(),
	})
}
