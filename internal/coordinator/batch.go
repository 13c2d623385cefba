package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/models"
	"github.com/mvantol/ansuz/internal/workflow"
)

// Batch runs the single-note workflow over every note in the capture area,
// isolating per-note failures into the aggregate result.
type Batch struct {
	base
	captureDir string
	wf         *workflow.Workflow
}

// NewBatch creates a batch coordinator that processes captured notes with the
// given enrichment delegate.
func NewBatch(root string, enricher enrich.Enricher, logger *slog.Logger) (*Batch, error) {
	b, err := newBase(root, logger)
	if err != nil {
		return nil, err
	}
	return &Batch{
		base:       b,
		captureDir: b.layout.Dirs.Capture,
		wf:         workflow.New(b.store, b.layout, enricher, b.logger),
	}, nil
}

// ProcessAll processes capture-area notes in lexical order. A fatal per-note
// error (missing file, malformed header) lands in the result's error map and
// the batch continues; only an unreadable capture area aborts the run.
func (b *Batch) ProcessAll(ctx context.Context, opts workflow.Options) (*models.BatchResult, error) {
	metas, err := b.store.List(b.captureDir)
	if err != nil {
		return nil, fmt.Errorf("batch: scan capture area: %w", err)
	}

	result := &models.BatchResult{Errors: map[string]string{}}
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		res, err := b.wf.Process(ctx, meta.Path, opts)
		if err != nil {
			result.Errors[meta.Path] = err.Error()
			continue
		}
		result.Processed++
		if res.StatusUpdated {
			result.StatusUpdated++
		}
		if len(res.Warnings) > 0 {
			if result.Warnings == nil {
				result.Warnings = map[string][]string{}
			}
			result.Warnings[meta.Path] = res.Warnings
		}
	}

	b.logger.Info("batch processing finished",
		slog.Int("processed", result.Processed),
		slog.Int("status_updated", result.StatusUpdated),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}
