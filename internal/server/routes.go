package server

import (
	"github.com/meetingnexus/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	// Live session socket
	e.GET("/ws", routes.MeetingSocketHandler)

	// Session inspection and summary routes
	apiRoutes := e.Group("/api")
	apiRoutes.GET("/sessions", routes.GetSessionsHandler)
	apiRoutes.GET("/sessions/:id/graph", routes.GetSessionGraphHandler)
	apiRoutes.GET("/sessions/:id/meeting", routes.GetSessionMeetingHandler)
	apiRoutes.POST("/sessions/:id/summary", routes.PostSessionSummaryHandler)

	// Model usage metrics
	apiRoutes.GET("/metrics", routes.GetMetricsHandler)
	apiRoutes.DELETE("/metrics", routes.DeleteMetricsHandler)
}
