package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mvantol/ansuz/internal/catalog"
	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/models"
)

// Stats is the analytics coordinator: it reconciles the SQLite catalog with
// the vault and reports lifecycle aggregates.
type Stats struct {
	base
	db *catalog.DB
}

// NewStats creates an analytics coordinator for root, opening the vault's
// catalog database. The enrichment delegate is part of the shared contract
// but unused here. Callers own Close.
func NewStats(root string, _ enrich.Enricher, logger *slog.Logger) (*Stats, error) {
	b, err := newBase(root, logger)
	if err != nil {
		return nil, err
	}
	db, err := catalog.Open(b.layout.CatalogPath())
	if err != nil {
		return nil, err
	}
	return &Stats{base: b, db: db}, nil
}

// Close releases the catalog database.
func (s *Stats) Close() error { return s.db.Close() }

// Collect syncs the catalog from disk and returns the vault aggregates.
func (s *Stats) Collect(ctx context.Context) (*models.VaultStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := catalog.Sync(s.db, s.store, s.logger); err != nil {
		return nil, fmt.Errorf("stats: sync catalog: %w", err)
	}

	total, err := s.db.TotalNotes()
	if err != nil {
		return nil, err
	}
	byStatus, err := s.db.CountByStatus()
	if err != nil {
		return nil, err
	}
	byType, err := s.db.CountByType()
	if err != nil {
		return nil, err
	}
	avg, err := s.db.AverageQuality()
	if err != nil {
		return nil, err
	}
	tags, err := s.db.TagCounts()
	if err != nil {
		return nil, err
	}
	oldest, _, err := s.db.OldestWithStatus(s.layout.Statuses.Inbox)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("stats collected", slog.Int("total", total))
	return &models.VaultStats{
		TotalNotes:        total,
		ByStatus:          byStatus,
		ByType:            byType,
		AverageQuality:    avg,
		TagCounts:         tags,
		OldestUnprocessed: oldest,
	}, nil
}
