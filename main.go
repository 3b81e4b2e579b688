package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/ychia112/GroceryShopperAI/internal/agent"
	"github.com/ychia112/GroceryShopperAI/internal/api"
	"github.com/ychia112/GroceryShopperAI/internal/auth"
	"github.com/ychia112/GroceryShopperAI/internal/config"
	"github.com/ychia112/GroceryShopperAI/internal/hub"
	"github.com/ychia112/GroceryShopperAI/internal/llm"
	"github.com/ychia112/GroceryShopperAI/internal/retrieval"
	"github.com/ychia112/GroceryShopperAI/internal/store"
	"github.com/ychia112/GroceryShopperAI/internal/ws"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	log.Info().Int("port", cfg.Port).Str("db", cfg.DatabaseURL).Msg("starting chat server")

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer db.Close()

	if n, err := store.ImportGroceryCSV(context.Background(), db, cfg.GroceryCSVPath); err != nil {
		// The catalog only powers retrieval; the chat service works without it.
		log.Warn().Err(err).Str("path", cfg.GroceryCSVPath).Msg("grocery catalog import skipped")
	} else if n > 0 {
		log.Info().Int("rows", n).Msg("grocery catalog imported")
	}

	registry := buildRegistry(cfg, log)
	log.Info().Strs("backends", registry.Names()).Str("default", registry.Default()).Msg("generation backends registered")

	h := hub.NewHub(log)
	retriever := retrieval.NewAdapter(db, log)
	pool := agent.NewPool(cfg.PipelineWorkers, log)
	pipeline := agent.NewPipeline(db, h, registry, retriever, pool, cfg.ChatHistoryLimit, log)

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	wsServer := ws.NewServer(cfg, h, db, log)
	handler := api.NewHandler(db, h, pipeline, registry, tokens, cfg, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handler.RegisterRoutes(e)
	e.GET("/ws", wsServer.HandleWebSocket, auth.Middleware(tokens))

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	pool.Shutdown()
}

// buildRegistry wires the configured generation backends. In mock mode every
// backend name resolves to the deterministic mock provider so the full
// pipeline runs without network access.
func buildRegistry(cfg *config.Config, log zerolog.Logger) *llm.Registry {
	registry := llm.NewRegistry(cfg.DefaultBackend, log)

	if config.MockMode() {
		mock := llm.NewMockProvider()
		for _, name := range []string{"openai", "gemini", "tinyllama"} {
			registry.Register(name, mock)
		}
		log.Warn().Msg("CHAT_MODE=MOCK: all backends use the mock provider")
		return registry
	}

	registry.Register("openai", llm.NewOpenAIClient("openai", cfg.OpenAIAPIBase, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMTimeout))
	if cfg.GeminiAPIKey != "" {
		registry.Register("gemini", llm.NewGeminiClient(cfg.GeminiAPIBase, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTimeout))
	}
	registry.Register("tinyllama", llm.NewOllamaClient(cfg.OllamaAPIBase, cfg.OllamaModel, cfg.LLMTimeout))
	return registry
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
