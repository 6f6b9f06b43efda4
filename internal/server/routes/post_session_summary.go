package routes

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/meetingnexus/backend/internal/server/middleware"
	"github.com/meetingnexus/backend/pkg/ai"
	"github.com/meetingnexus/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

func PostSessionSummaryHandler(c echo.Context) error {
	type response struct {
		Session string `json:"session"`
		Summary string `json:"summary"`
	}

	app := c.(*middleware.AppContext).App
	sess, ok := app.Controller.Lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
	}

	snap := sess.Snapshot()
	if len(snap.Nodes) == 0 {
		return c.JSON(http.StatusOK, response{Session: sess.ID, Summary: ""})
	}

	summary, err := app.AiClient.GenerateCompletion(
		c.Request().Context(),
		buildSummaryPrompt(snap),
		ai.WithSystemPrompts(ai.SummarizeGraphPrompt),
	)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "summary generation failed"})
	}

	return c.JSON(http.StatusOK, response{Session: sess.ID, Summary: strings.TrimSpace(summary)})
}

// buildSummaryPrompt flattens a graph snapshot into the line-per-fact form
// the summarization prompt expects.
func buildSummaryPrompt(snap graph.Snapshot) string {
	var b strings.Builder
	b.WriteString("Entities:\n")
	for _, n := range snap.Nodes {
		b.WriteString("- ")
		b.WriteString(n.Label)
		if n.Annotation != "" {
			fmt.Fprintf(&b, " (%s)", n.Annotation)
		}
		b.WriteString("\n")
	}
	b.WriteString("Relationships:\n")
	for _, e := range snap.Edges {
		fmt.Fprintf(&b, "- %s %s %s\n", e.Source, e.Label, e.Target)
	}
	return b.String()
}
