package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/meetingnexus/backend/internal/session"
	"github.com/meetingnexus/backend/pkg/ai"
)

type App struct {
	Controller *session.Controller
	AiClient   ai.GraphAIClient
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
