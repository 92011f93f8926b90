// Command extract runs the pipeline once against a local file and prints the
// normalized record as JSON. Useful for prompt/backend debugging without a
// database or server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/tobi-ak/invoiceflow/internal/common"
	"github.com/tobi-ak/invoiceflow/internal/entity"
	"github.com/tobi-ak/invoiceflow/internal/extract"
	"github.com/tobi-ak/invoiceflow/internal/llm"
	"github.com/tobi-ak/invoiceflow/internal/llm/gemini"
	"github.com/tobi-ak/invoiceflow/internal/llm/groq"
	"github.com/tobi-ak/invoiceflow/internal/pipeline"
)

func main() {
	backend := flag.String("backend", "", "backend identifier (groq|gemini); empty uses the configured default")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall run timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if flag.NArg() < 1 {
		logger.Error("usage: extract [-backend groq|gemini] <file.pdf>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}
	cfg := common.LoadConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

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

	pipe := pipeline.New(extractor, registry, pipeline.Config{
		DefaultBackend: cfg.LLM.DefaultBackend,
		MaxRetries:     cfg.LLM.MaxRetries,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	doc := entity.Document{Name: filepath.Base(path), Data: data}
	rec, err := pipe.Run(ctx, doc, *backend)
	if err != nil {
		logger.Error("extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		logger.Error("encode record", "error", err)
		os.Exit(1)
	}
}
