// Package models defines the domain types for Ansuz.
package models

import "time"

// NoteType classifies a note and determines its promotion target directory.
// It is immutable once set on a note.
type NoteType string

const (
	TypeFleeting   NoteType = "fleeting"
	TypeLiterature NoteType = "literature"
	TypePermanent  NoteType = "permanent"
)

// ParseNoteType returns the NoteType for s, or false when s names no known type.
func ParseNoteType(s string) (NoteType, bool) {
	switch NoteType(s) {
	case TypeFleeting, TypeLiterature, TypePermanent:
		return NoteType(s), true
	}
	return "", false
}

// Default status vocabulary. The exact strings are configurable per vault
// (see layout.Statuses); these are the built-in names.
const (
	StatusInbox     = "inbox"
	StatusPromoted  = "promoted"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// DateLayout is the on-disk format for lifecycle date stamps.
const DateLayout = "2006-01-02"

// Note is the in-memory view of one note's lifecycle metadata. The file on
// disk is the durable representation; a Note is transient and owned by
// whichever workflow step is currently processing it.
type Note struct {
	Path         string     `json:"path"`
	Title        string     `json:"title,omitempty"`
	Type         NoteType   `json:"type,omitempty"`
	Status       string     `json:"status"`
	QualityScore *float64   `json:"quality_score,omitempty"`
	Created      *time.Time `json:"created,omitempty"`
	Processed    *time.Time `json:"processed_date,omitempty"`
	Promoted     *time.Time `json:"promoted_date,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	Body         string     `json:"-"`
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProcessResult reports the outcome of processing a single captured note.
type ProcessResult struct {
	Path          string   `json:"path"`
	Success       bool     `json:"success"`
	StatusUpdated bool     `json:"status_updated"`
	Preview       bool     `json:"preview,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// Skip reasons recorded by the promotion engine.
const (
	SkipBelowThreshold = "below_threshold"
	SkipMissingType    = "missing_type"
)

// PromotionResult aggregates one auto-promotion batch. Every candidate ends
// up in exactly one of: the promoted counts, SkippedNotes, or Errors.
type PromotionResult struct {
	PromotedCount int               `json:"promoted_count"`
	ByType        map[string]int    `json:"by_type"`
	SkippedNotes  map[string]string `json:"skipped_notes"`
	Errors        map[string]string `json:"errors"`
}

// NewPromotionResult returns an empty result with all maps initialised.
func NewPromotionResult() *PromotionResult {
	return &PromotionResult{
		ByType:       map[string]int{},
		SkippedNotes: map[string]string{},
		Errors:       map[string]string{},
	}
}

// BatchResult aggregates a capture-area batch run of the single-note workflow.
type BatchResult struct {
	Processed     int                 `json:"processed"`
	StatusUpdated int                 `json:"status_updated"`
	Warnings      map[string][]string `json:"warnings,omitempty"`
	Errors        map[string]string   `json:"errors"`
}

// TriageEntry is one ranked row in a triage report.
type TriageEntry struct {
	Path         string   `json:"path"`
	Title        string   `json:"title,omitempty"`
	Status       string   `json:"status"`
	QualityScore *float64 `json:"quality_score,omitempty"`
	AgeDays      int      `json:"age_days"`
	Rank         float64  `json:"rank"`
}

// TriageReport is a read-only projection over the capture area.
type TriageReport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Total       int           `json:"total"`
	Entries     []TriageEntry `json:"entries"`
}

// OrphanReport is the outcome of one orphan-remediation pass.
type OrphanReport struct {
	Scanned  int               `json:"scanned"`
	Orphans  []string          `json:"orphans"`
	Archived []string          `json:"archived,omitempty"`
	DryRun   bool              `json:"dry_run"`
	Errors   map[string]string `json:"errors"`
}

// VaultStats is the analytics coordinator's aggregate view of the vault.
type VaultStats struct {
	TotalNotes        int            `json:"total_notes"`
	ByStatus          map[string]int `json:"by_status"`
	ByType            map[string]int `json:"by_type"`
	AverageQuality    float64        `json:"average_quality"`
	TagCounts         map[string]int `json:"tag_counts"`
	OldestUnprocessed string         `json:"oldest_unprocessed,omitempty"`
}
