package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadapter "github.com/satriahrh/cocoa-fruit/playground/adapters/http"
	"github.com/satriahrh/cocoa-fruit/playground/adapters/llm"
	"github.com/satriahrh/cocoa-fruit/playground/adapters/memory"
	"github.com/satriahrh/cocoa-fruit/playground/adapters/message_broker"
	"github.com/satriahrh/cocoa-fruit/playground/adapters/websocket"
	"github.com/satriahrh/cocoa-fruit/playground/config"
	"github.com/satriahrh/cocoa-fruit/playground/usecase"
	"github.com/satriahrh/cocoa-fruit/playground/utils/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.With().Fatal("failed to load configuration", zap.Error(err))
	}

	log.Setup(log.Options{Debug: cfg.App.Debug, FilePath: cfg.App.LogFile})
	defer log.Sync()

	catalog, err := llm.LoadCatalog(cfg.Playground.CatalogPath)
	if err != nil {
		log.With().Fatal("failed to load model catalog", zap.Error(err))
	}
	defaultModel := catalog.ResolveDefault(cfg.Playground.DefaultModel)

	factory := llm.NewFactory(catalog, llm.Credentials{
		GeminiAPIKey:  cfg.Keys.Gemini,
		OpenAIAPIKey:  cfg.Keys.OpenAI,
		OpenAIBaseURL: cfg.Keys.OpenAIBaseURL,
	}, llm.FactoryOptions{
		Strict:  cfg.Playground.StrictBackends,
		Timeout: cfg.Playground.GenerationTimeout,
	})
	validator := usecase.NewPromptValidator(cfg.Playground.MaxPromptLength)

	broker := message_broker.NewChannelMessageBroker()
	defer broker.Close()

	sessions := memory.NewSessionRegistry(cfg.Playground.SessionTTL, func(id string) *usecase.Orchestrator {
		store := usecase.NewSessionStore(defaultModel, catalog.EngageLevels)
		return usecase.NewOrchestrator(id, store, validator, factory, broker)
	}, broker)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := websocket.NewServer(sessions, broker, cfg.App.CorsAllowedOrigins)
	if err := server.Listen(ctx); err != nil {
		log.With().Fatal("failed to start websocket listener", zap.Error(err))
	}

	handler := httpadapter.NewPlaygroundHandler(sessions, factory, httpadapter.NewTokenSigner(cfg.Auth.SessionTokenSecret, httpadapter.TokenExpiry), defaultModel)

	e := echo.New()
	e.HideBanner = true
	httpadapter.Configure(e)

	// Security middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.App.CorsAllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
		},
		MaxAge: 86400, // 24 hours
	}))

	// Request size limit
	e.Use(middleware.BodyLimit("1M"))

	// Session token auth for WebSocket (same as HTTP)
	e.GET("/ws", server.Handler, handler.SessionMiddleware)
	handler.Register(e)

	logger := log.With(zap.String("port", cfg.App.Port))
	logger.Info("starting playground server",
		zap.String("default_model", defaultModel),
		zap.Int("models", len(catalog.Models)),
		zap.Bool("strict_backends", cfg.Playground.StrictBackends))
	logger.Info("available endpoints",
		zap.Strings("public", []string{
			"GET  /api/v1/health",
			"GET  /api/v1/models",
			"POST /api/v1/sessions",
		}),
		zap.Strings("session", []string{
			"GET|DELETE /api/v1/session",
			"PUT  /api/v1/session/{draft,model,view}",
			"POST /api/v1/session/{submit,reset}",
			"POST /api/v1/session/responses/:index/toggle",
			"PUT  /api/v1/session/engage/{level,prompt,guess}",
			"POST /api/v1/session/engage/{submit,reset,toggle,check}",
			"GET  /ws?token=",
		}))

	go func() {
		if err := e.Start(":" + cfg.App.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
