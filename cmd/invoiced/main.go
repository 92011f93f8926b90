package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tobi-ak/invoiceflow/internal/common"
	"github.com/tobi-ak/invoiceflow/internal/export"
	"github.com/tobi-ak/invoiceflow/internal/extract"
	"github.com/tobi-ak/invoiceflow/internal/ingest"
	"github.com/tobi-ak/invoiceflow/internal/llm"
	"github.com/tobi-ak/invoiceflow/internal/llm/gemini"
	"github.com/tobi-ak/invoiceflow/internal/llm/groq"
	"github.com/tobi-ak/invoiceflow/internal/pipeline"
	"github.com/tobi-ak/invoiceflow/internal/repository"
	"github.com/tobi-ak/invoiceflow/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.Open(cfg.Database, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	invoicesRepo := repository.NewInvoiceRepository(db, logger)

	extractor := extract.NewExtractor(extract.Config{Pdftotext: cfg.Extract.Pdftotext}, logger)

	registry := llm.NewRegistry()
	if cfg.LLM.GroqAPIKey != "" {
		registry.Register(groq.NewClient(groq.Config{
			APIKey:  cfg.LLM.GroqAPIKey,
			BaseURL: cfg.LLM.GroqBaseURL,
			Model:   cfg.LLM.GroqModel,
			Timeout: cfg.LLM.Timeout,
		}, logger))
	}
	if cfg.LLM.GeminiAPIKey != "" {
		registry.Register(gemini.NewClient(gemini.Config{
			APIKey:  cfg.LLM.GeminiAPIKey,
			Model:   cfg.LLM.GeminiModel,
			Timeout: cfg.LLM.Timeout,
		}, logger))
	}
	logger.Info("backends registered", "backends", registry.Names())

	pipe := pipeline.New(extractor, registry, pipeline.Config{
		DefaultBackend: cfg.LLM.DefaultBackend,
		MaxRetries:     cfg.LLM.MaxRetries,
	}, logger)

	exportSvc := export.NewService(invoicesRepo, logger)

	if cfg.Ingest.WatchDir != "" {
		w, err := ingest.NewWatcher(ingest.Config{Dir: cfg.Ingest.WatchDir}, pipe, invoicesRepo, logger)
		if err != nil {
			logger.Error("watcher init", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	server.New(pipe, invoicesRepo, exportSvc, logger).Routes(router)

	srv := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: router}
	go func() {
		logger.Info("http serving", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
