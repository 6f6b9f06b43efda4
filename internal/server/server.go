package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meetingnexus/backend/internal/queue"
	mid "github.com/meetingnexus/backend/internal/server/middleware"
	"github.com/meetingnexus/backend/internal/session"
	"github.com/meetingnexus/backend/internal/util"
	"github.com/meetingnexus/backend/pkg/ai"
	oai "github.com/meetingnexus/backend/pkg/ai/ollama"
	gai "github.com/meetingnexus/backend/pkg/ai/openai"
	"github.com/meetingnexus/backend/pkg/graph"
	"github.com/meetingnexus/backend/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient := newAIClient()

	var feed session.TranscriptFeed
	if queue.Enabled() {
		f, err := queue.Init(ctx)
		if err != nil {
			logger.Fatal("Failed to connect transcript feed", "err", err)
		}
		defer f.Close()
		feed = f
	}

	controller := session.NewController(session.NewControllerParams{
		Extractor: graph.NewExtractor(graph.NewExtractorParams{
			AIClient:    aiClient,
			TokenBudget: int(util.GetEnvNumeric("BATCH_TOKEN_BUDGET", 3000)),
		}),
		Feed: feed,
		Config: session.Config{
			BatchMaxSegments:   int(util.GetEnvNumeric("BATCH_MAX_SEGMENTS", 5)),
			BatchFlushInterval: util.GetEnvDuration("BATCH_FLUSH_INTERVAL", 30*time.Second),
			ExtractionTimeout:  util.GetEnvDuration("EXTRACTION_TIMEOUT", 60*time.Second),
		},
	})
	defer controller.Close()

	e.Use(mid.AppContextMiddleware(&mid.App{
		Controller: controller,
		AiClient:   aiClient,
	}))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func newAIClient() ai.GraphAIClient {
	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
			ExtractionModel: util.GetEnv("AI_CHAT_EXTRACT_MODEL"),

			ChatURL: util.GetEnv("AI_CHAT_URL"),
			ChatKey: util.GetEnv("AI_CHAT_KEY"),
		})
	}
}
