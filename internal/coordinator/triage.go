package coordinator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"log/slog"

	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/frontmatter"
	"github.com/mvantol/ansuz/internal/models"
)

// Triage ranks captured notes for review. It is a pure read-side projection:
// nothing on disk is touched.
type Triage struct {
	base
	captureDir string
	now        func() time.Time
}

// NewTriage creates a triage coordinator for root. The enrichment delegate is
// part of the shared coordinator contract but triage never invokes it.
func NewTriage(root string, _ enrich.Enricher, logger *slog.Logger) (*Triage, error) {
	b, err := newBase(root, logger)
	if err != nil {
		return nil, err
	}
	return &Triage{base: b, captureDir: b.layout.Dirs.Capture, now: time.Now}, nil
}

// Report scans the capture area and returns entries ranked by a quality/age
// heuristic: low-quality old notes sink, high-quality notes surface, and age
// nudges long-ignored notes upward so they eventually get looked at.
func (t *Triage) Report(ctx context.Context) (*models.TriageReport, error) {
	metas, err := t.store.List(t.captureDir)
	if err != nil {
		return nil, fmt.Errorf("triage: scan capture area: %w", err)
	}

	now := t.now()
	report := &models.TriageReport{GeneratedAt: now}
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := t.store.Read(meta.Path)
		if err != nil {
			t.logger.Warn("triage: read failed",
				slog.String("path", meta.Path), slog.String("error", err.Error()))
			continue
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			t.logger.Warn("triage: parse failed",
				slog.String("path", meta.Path), slog.String("error", err.Error()))
			continue
		}
		rec := doc.Record(meta.Path)

		age := ageDays(rec, meta.UpdatedAt, now)
		report.Entries = append(report.Entries, models.TriageEntry{
			Path:         meta.Path,
			Title:        rec.Title,
			Status:       rec.Status,
			QualityScore: rec.QualityScore,
			AgeDays:      age,
			Rank:         rank(rec.QualityScore, age),
		})
	}
	report.Total = len(report.Entries)

	sort.SliceStable(report.Entries, func(i, j int) bool {
		if report.Entries[i].Rank != report.Entries[j].Rank {
			return report.Entries[i].Rank > report.Entries[j].Rank
		}
		return report.Entries[i].Path < report.Entries[j].Path
	})
	return report, nil
}

// ageDays prefers the created stamp and falls back to file modification time.
func ageDays(rec *models.Note, modTime, now time.Time) int {
	ref := modTime
	if rec.Created != nil {
		ref = *rec.Created
	}
	days := int(now.Sub(ref).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// rank weighs quality at 70% and age at 30%, with age saturating at 30 days.
// Unscored notes count as middling quality.
func rank(quality *float64, age int) float64 {
	q := 0.5
	if quality != nil {
		q = *quality
	}
	ageFactor := math.Min(float64(age)/30.0, 1.0)
	return q*0.7 + ageFactor*0.3
}
