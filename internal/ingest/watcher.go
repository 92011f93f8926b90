// Package ingest watches a drop folder and feeds new documents through the
// extraction pipeline.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tobi-ak/invoiceflow/internal/entity"
	"github.com/tobi-ak/invoiceflow/internal/pipeline"
	"github.com/tobi-ak/invoiceflow/internal/repository"
)

// Allowed extensions for discovery (lowercase, with '.').
var allowedExts = map[string]struct{}{
	".pdf": {},
}

// Config for the drop-folder watcher.
type Config struct {
	Dir string
	// Settle is how long a new file must sit unchanged before being read,
	// so partially copied files are not ingested mid-write.
	Settle time.Duration
	// Backend selects the generative backend for watched files; empty uses
	// the pipeline default.
	Backend string
}

type Watcher struct {
	cfg      Config
	pipeline *pipeline.Pipeline
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewWatcher(cfg Config, p *pipeline.Pipeline, invoices repository.InvoiceRepository, logger *slog.Logger) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("no watch directory provided")
	}
	if cfg.Settle <= 0 {
		cfg.Settle = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, pipeline: p, invoices: invoices, logger: logger}, nil
}

// Run blocks, ingesting new files until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("ingest.watcher_create_failed", "error", err)
		return err
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.cfg.Dir); err != nil {
		w.logger.Error("ingest.watch_add_failed", "dir", w.cfg.Dir, "error", err)
		return err
	}
	w.logger.Info("ingest.watching", "dir", w.cfg.Dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			ext := strings.ToLower(filepath.Ext(ev.Name))
			if _, ok := allowedExts[ext]; !ok {
				continue
			}
			w.ingest(ctx, ev.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("ingest.watch_error", "error", err)
		}
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	// let copies finish
	select {
	case <-ctx.Done():
		return
	case <-time.After(w.cfg.Settle):
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("ingest.read_failed", "path", path, "error", err)
		return
	}

	doc := entity.Document{Name: filepath.Base(path), Data: data}
	rec, err := w.pipeline.Run(ctx, doc, w.cfg.Backend)
	if err != nil {
		w.logger.Error("ingest.extract_failed", "path", path, "error", err)
		return
	}

	inv, err := w.invoices.Create(ctx, rec, "", doc.Name)
	if err != nil {
		w.logger.Error("ingest.persist_failed", "path", path, "error", err)
		return
	}
	w.logger.Info("ingest.ok", "path", path, "invoice_id", inv.ID, "number", inv.Number)
}
