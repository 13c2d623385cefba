// Package workflow processes one captured note at a time: enrichment, metadata
// merge, and the inbox → promoted status transition.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mvantol/ansuz/internal/apperr"
	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/frontmatter"
	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/models"
	"github.com/mvantol/ansuz/internal/storage"
)

// Options carries the two independent switches of a processing run.
type Options struct {
	// SkipEnrichment processes file mechanics only; the enrichment delegate
	// is not invoked and the status transition is suppressed.
	SkipEnrichment bool
	// PreviewOnly computes the outcome without writing anything.
	PreviewOnly bool
}

// Workflow processes individual notes from the capture area.
type Workflow struct {
	store    storage.Provider
	layout   *layout.Layout
	enricher enrich.Enricher
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a workflow over the given vault layout.
func New(store storage.Provider, l *layout.Layout, enricher enrich.Enricher, logger *slog.Logger) *Workflow {
	return &Workflow{
		store:    store,
		layout:   l,
		enricher: enricher,
		logger:   logger,
		now:      time.Now,
	}
}

// Process runs one note through enrichment and, when every condition holds,
// advances its status from inbox to promoted.
//
// The transition fires only if: not PreviewOnly, not SkipEnrichment, the
// enrichment delegate returned no error, and the file write succeeds. Any one
// false condition leaves the note's status untouched. A nil enricher behaves
// exactly like SkipEnrichment.
func (w *Workflow) Process(ctx context.Context, path string, opts Options) (*models.ProcessResult, error) {
	data, err := w.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("workflow: %s: %w", path, apperr.ErrNoteNotFound)
		}
		return nil, err
	}

	doc, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("workflow: %s: %w", path, err)
	}

	result := &models.ProcessResult{Path: path, Preview: opts.PreviewOnly}

	skipEnrichment := opts.SkipEnrichment || w.enricher == nil

	enrichFailed := false
	if !skipEnrichment {
		res, err := w.enricher.Enrich(ctx, doc.Body())
		if err != nil {
			enrichFailed = true
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%v: %v", apperr.ErrEnrichment, err))
			w.logger.Warn("enrichment failed",
				slog.String("path", path), slog.String("error", err.Error()))
		} else {
			w.merge(doc, res)
		}
	}

	status, _ := doc.GetString(frontmatter.KeyStatus)
	inInbox := status == "" || status == w.layout.Statuses.Inbox

	advance := !opts.PreviewOnly && !skipEnrichment && !enrichFailed && inInbox
	if advance {
		doc.SetString(frontmatter.KeyStatus, w.layout.Statuses.Promoted)
		doc.SetString(frontmatter.KeyProcessed, w.now().Format(models.DateLayout))
	}

	if opts.PreviewOnly {
		result.Success = true
		return result, nil
	}

	if doc.Dirty() {
		out, err := doc.Bytes()
		if err != nil {
			return nil, fmt.Errorf("workflow: serialize %s: %w", path, err)
		}
		if err := w.store.Write(path, out); err != nil {
			return nil, fmt.Errorf("workflow: %v: %w", err, apperr.ErrMutation)
		}
	}

	result.Success = true
	result.StatusUpdated = advance
	if advance {
		w.logger.Info("note processed",
			slog.String("path", path),
			slog.String("status", w.layout.Statuses.Promoted))
	}
	return result, nil
}

// merge folds an enrichment result into the note's metadata. Suggested tags
// are unioned with existing tags; summary and quality score overwrite.
func (w *Workflow) merge(doc *frontmatter.Doc, res *enrich.Result) {
	if res == nil {
		return
	}
	if res.Summary != "" {
		doc.SetString(frontmatter.KeySummary, res.Summary)
	}
	if res.QualityScore != nil {
		doc.SetFloat(frontmatter.KeyQuality, *res.QualityScore)
	}
	if len(res.SuggestedTags) > 0 {
		existing := doc.GetStringList(frontmatter.KeyTags)
		seen := make(map[string]struct{}, len(existing))
		for _, t := range existing {
			seen[t] = struct{}{}
		}
		merged := existing
		for _, t := range res.SuggestedTags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			merged = append(merged, t)
		}
		if len(merged) > len(existing) {
			doc.SetStringList(frontmatter.KeyTags, merged)
		}
	}
}
