// Package promote implements the batch quality-gated promotion engine: notes
// that cleared enrichment (status promoted) and meet the quality threshold
// are relocated from the capture area to their type-specific directory.
package promote

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/mvantol/ansuz/internal/frontmatter"
	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/models"
	"github.com/mvantol/ansuz/internal/storage"
)

// Engine relocates quality-gated notes out of the capture area.
type Engine struct {
	store  storage.Provider
	layout *layout.Layout
	logger *slog.Logger
	now    func() time.Time
}

// New creates a promotion engine over the given vault layout.
func New(store storage.Provider, l *layout.Layout, logger *slog.Logger) *Engine {
	return &Engine{store: store, layout: l, logger: logger, now: time.Now}
}

// AutoPromote scans the capture area for notes with status promoted and, for
// each candidate meeting the quality threshold, relocates it to its type
// directory with status published and a promoted_date stamp. A threshold <= 0
// falls back to the layout's configured threshold.
//
// Candidates are processed in lexical path order. A failure on one note is
// recorded and never aborts the batch; only an unreadable capture area is
// fatal.
func (e *Engine) AutoPromote(ctx context.Context, threshold float64) (*models.PromotionResult, error) {
	if threshold <= 0 {
		threshold = e.layout.QualityThreshold
	}

	metas, err := e.store.List(e.layout.Dirs.Capture)
	if err != nil {
		return nil, fmt.Errorf("promote: scan capture area: %w", err)
	}

	result := models.NewPromotionResult()
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.promoteOne(meta.Path, threshold, result)
	}

	e.logger.Info("auto-promotion finished",
		slog.Int("promoted", result.PromotedCount),
		slog.Int("skipped", len(result.SkippedNotes)),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

// promoteOne handles a single candidate, recording the outcome in result.
func (e *Engine) promoteOne(notePath string, threshold float64, result *models.PromotionResult) {
	data, err := e.store.Read(notePath)
	if err != nil {
		result.Errors[notePath] = err.Error()
		return
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		result.Errors[notePath] = err.Error()
		return
	}

	// Only notes already advanced by the single-note workflow are candidates;
	// inbox notes are that workflow's job.
	status, _ := doc.GetString(frontmatter.KeyStatus)
	if status != e.layout.Statuses.Promoted {
		return
	}

	quality, ok := doc.GetFloat(frontmatter.KeyQuality)
	if !ok || quality < threshold {
		result.SkippedNotes[notePath] = models.SkipBelowThreshold
		return
	}

	typeName, _ := doc.GetString(frontmatter.KeyType)
	noteType, ok := models.ParseNoteType(typeName)
	if !ok {
		result.SkippedNotes[notePath] = models.SkipMissingType
		return
	}
	targetDir, err := e.layout.RelFor(noteType)
	if err != nil {
		result.SkippedNotes[notePath] = models.SkipMissingType
		return
	}

	destPath := path.Join(targetDir, path.Base(notePath))

	doc.SetString(frontmatter.KeyStatus, e.layout.Statuses.Published)
	doc.SetString(frontmatter.KeyPromoted, e.now().Format(models.DateLayout))
	out, err := doc.Bytes()
	if err != nil {
		result.Errors[notePath] = err.Error()
		return
	}

	// Write the destination first, then remove the source: the source is
	// never gone without the destination being present.
	if err := e.store.WriteNew(destPath, out); err != nil {
		result.Errors[notePath] = err.Error()
		return
	}
	if err := e.store.Delete(notePath); err != nil {
		// Destination exists; report the dangling source rather than
		// guessing at cleanup.
		result.Errors[notePath] = fmt.Sprintf("promoted to %s but source not removed: %v", destPath, err)
		return
	}

	result.PromotedCount++
	result.ByType[string(noteType)]++
	e.logger.Info("note promoted",
		slog.String("from", notePath),
		slog.String("to", destPath),
		slog.Float64("quality", quality))
}
