// Package pipeline orchestrates one extraction run: document bytes to a
// normalized invoice record.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/tobi-ak/invoiceflow/internal/entity"
	"github.com/tobi-ak/invoiceflow/internal/extract"
	"github.com/tobi-ak/invoiceflow/internal/llm"
	"github.com/tobi-ak/invoiceflow/internal/reconcile"
)

// Config holds pipeline behavior flags.
type Config struct {
	// DefaultBackend is used when the caller passes an empty identifier.
	DefaultBackend string
	// MaxRetries bounds retries of transient backend failures. Zero disables
	// retrying. Provider 4xx responses are never retried: a bad credential or
	// model name does not get better under load.
	MaxRetries int
}

type Pipeline struct {
	extractor *extract.Extractor
	registry  *llm.Registry
	cfg       Config
	logger    *slog.Logger
}

func New(extractor *extract.Extractor, registry *llm.Registry, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultBackend == "" {
		cfg.DefaultBackend = llm.BackendGroq
	}
	return &Pipeline{extractor: extractor, registry: registry, cfg: cfg, logger: logger}
}

// Run executes the full chain: text extraction, structured generation,
// sanitization, reconciliation. Each invocation owns its data exclusively;
// nothing is shared across concurrent runs. Failures from the extractor and
// the backend propagate unchanged; there is no more data to try locally.
func (p *Pipeline) Run(ctx context.Context, doc entity.Document, backendID string) (entity.InvoiceRecord, error) {
	rid := uuid.New().String()
	start := time.Now()

	if backendID == "" {
		backendID = p.cfg.DefaultBackend
	}
	gen, err := p.registry.Get(backendID)
	if err != nil {
		return entity.InvoiceRecord{}, err
	}

	p.logger.Info("pipeline.run.start",
		"req_id", rid,
		"document", doc.Name,
		"bytes", len(doc.Data),
		"backend", backendID,
	)

	text, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		return entity.InvoiceRecord{}, err
	}

	raw, err := p.generate(ctx, gen, llm.BuildExtractionPrompt(), text)
	if err != nil {
		p.logger.Error("pipeline.generate_failed",
			"req_id", rid, "backend", backendID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return entity.InvoiceRecord{}, err
	}

	candidate, err := llm.DecodeInvoiceJSON(raw)
	if err != nil {
		// The raw output is the only evidence of what went wrong; keep it.
		var pe *llm.ParseError
		if errors.As(err, &pe) {
			p.logger.Error("pipeline.parse_failed",
				"req_id", rid, "backend", backendID,
				"raw_output", pe.Raw,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}
		return entity.InvoiceRecord{}, err
	}

	if verr := llm.ValidateRecord(candidate); verr != nil {
		p.logger.Warn("pipeline.schema_mismatch",
			"req_id", rid, "backend", backendID, "error", verr,
		)
	}

	rec := reconcile.Normalize(candidate)

	p.logger.Info("pipeline.run.ok",
		"req_id", rid,
		"backend", backendID,
		"vendor", rec.Vendor.Name,
		"number", rec.Invoice.Number,
		"total", rec.Invoice.Total,
		"line_items", len(rec.Invoice.LineItems),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

// Reconcile is the editing re-entry point: a partially mutated record goes
// straight back through reconciliation, skipping extraction entirely.
func (p *Pipeline) Reconcile(candidate entity.InvoiceRecord) entity.InvoiceRecord {
	return reconcile.Normalize(candidate)
}

func (p *Pipeline) generate(ctx context.Context, gen llm.Generator, instructions, text string) (string, error) {
	if p.cfg.MaxRetries <= 0 {
		return gen.Generate(ctx, instructions, text)
	}

	var out string
	op := func() error {
		s, err := gen.Generate(ctx, instructions, text)
		if err != nil {
			var be *llm.BackendError
			if errors.As(err, &be) && be.Status >= 400 && be.Status < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		out = s
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(p.cfg.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		return "", err
	}
	return out, nil
}
