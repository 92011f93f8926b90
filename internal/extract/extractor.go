// Package extract turns a raw invoice document into plain text by trying an
// ordered list of strategies until one succeeds.
package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/tobi-ak/invoiceflow/internal/entity"
)

// Config controls which strategies are assembled and in what order.
type Config struct {
	// Pdftotext is the poppler binary name or path. Empty disables the
	// exec-based strategy.
	Pdftotext string
}

type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewExtractor builds the default chain: structured PDF text first, then the
// raw content-stream sweep, then (when configured) poppler's pdftotext.
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	strategies := []Strategy{
		pdfTextStrategy{},
		rawStreamStrategy{},
	}
	if cfg.Pdftotext != "" {
		strategies = append(strategies, popplerStrategy{bin: cfg.Pdftotext, runner: execRunner{}})
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// NewChain builds an extractor over an explicit strategy list. Tests and
// callers with custom strategies use this directly.
func NewChain(logger *slog.Logger, strategies ...Strategy) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract tries each strategy in order and returns the first successful
// result. A strategy advancing the chain requires an actual error; empty text
// from a succeeding strategy is accepted. Strategies run strictly
// sequentially, and a failed strategy is never retried; a malformed document
// does not become well-formed on a second read.
func (e *Extractor) Extract(ctx context.Context, doc entity.Document) (string, error) {
	start := time.Now()
	attempts := make([]StrategyError, 0, len(e.strategies))

	for _, s := range e.strategies {
		text, err := s.Extract(ctx, doc)
		if err != nil {
			e.logger.Warn("extract.strategy_failed",
				"strategy", s.Name(),
				"document", doc.Name,
				"error", err,
			)
			attempts = append(attempts, StrategyError{Strategy: s.Name(), Err: err})
			continue
		}
		e.logger.Info("extract.ok",
			"strategy", s.Name(),
			"document", doc.Name,
			"text_len", len(text),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return text, nil
	}

	e.logger.Error("extract.failed",
		"document", doc.Name,
		"attempts", len(attempts),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return "", &ExtractionError{Attempts: attempts}
}
