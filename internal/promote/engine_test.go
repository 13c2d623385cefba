package promote

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mvantol/ansuz/internal/frontmatter"
	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/models"
	"github.com/mvantol/ansuz/internal/storage"
)

func setup(t *testing.T) (*Engine, storage.Provider) {
	t.Helper()
	root := t.TempDir()
	layout.ResetCache()
	t.Cleanup(layout.ResetCache)
	l, err := layout.Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := l.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists: %v", err)
	}
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	e := New(store, l, slog.New(slog.DiscardHandler))
	e.now = func() time.Time { return time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC) }
	return e, store
}

func writeNote(t *testing.T, store storage.Provider, path, header string) {
	t.Helper()
	if err := store.Write(path, []byte("---\n"+header+"---\nbody\n")); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readDoc(t *testing.T, store storage.Provider, path string) *frontmatter.Doc {
	t.Helper()
	data, err := store.Read(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return doc
}

func TestAutoPromote_QualifyingNote(t *testing.T) {
	e, store := setup(t)
	writeNote(t, store, "inbox/n1.md", "type: permanent\nstatus: promoted\nquality_score: 0.85\n")

	res, err := e.AutoPromote(context.Background(), 0.7)
	if err != nil {
		t.Fatalf("AutoPromote: %v", err)
	}
	if res.PromotedCount != 1 || res.ByType["permanent"] != 1 {
		t.Errorf("result = %+v", res)
	}
	if store.Exists("inbox/n1.md") {
		t.Error("source should be removed")
	}
	doc := readDoc(t, store, "permanent/n1.md")
	if s, _ := doc.GetString(frontmatter.KeyStatus); s != "published" {
		t.Errorf("status = %q, want published", s)
	}
	if d, _ := doc.GetString(frontmatter.KeyPromoted); d != "2026-08-23" {
		t.Errorf("promoted_date = %q", d)
	}
}

func TestAutoPromote_BelowThresholdSkipped(t *testing.T) {
	e, store := setup(t)
	writeNote(t, store, "inbox/n2.md", "type: permanent\nstatus: promoted\nquality_score: 0.5\n")

	res, err := e.AutoPromote(context.Background(), 0.7)
	if err != nil {
		t.Fatalf("AutoPromote: %v", err)
	}
	if res.PromotedCount != 0 {
		t.Errorf("promoted = %d, want 0", res.PromotedCount)
	}
	if res.SkippedNotes["inbox/n2.md"] != models.SkipBelowThreshold {
		t.Errorf("skipped = %v", res.SkippedNotes)
	}
	if !store.Exists("inbox/n2.md") {
		t.Error("skipped note must stay in place")
	}
}

func TestAutoPromote_MissingScoreSkipped(t *testing.T) {
	e, store := setup(t)
	writeNote(t, store, "inbox/noscore.md", "type: permanent\nstatus: promoted\n")

	res, err := e.AutoPromote(context.Background(), 0.7)
	if err != nil {
		t.Fatalf("AutoPromote: %v", err)
	}
	if res.SkippedNotes["inbox/noscore.md"] != models.SkipBelowThreshold {
		t.Errorf("skipped = %v", res.SkippedNotes)
	}
}

func TestAutoPromote_MissingTypeSkipped(t *testing.T) {
	e, store := setup(t)
	writeNote(t, store, "inbox/untyped.md", "status: promoted\nquality_score: 0.9\n")

	res, err := e.AutoPromote(context.Background(), 0.7)
	if err != nil {
		t.Fatalf("AutoPromote: %v", err)
	}
	if res.SkippedNotes["inbox/untyped.md"] != models.SkipMissingType {
		t.Errorf("skipped = %v", res.SkippedNotes)
	}
}

func TestAutoPromote_IgnoresInboxNotes(t *testing.T) {
	e, store := setup(t)
	writeNote(t, store, "inbox/fresh.md", "type: permanent\nstatus: inbox\nquality_score: 0.9\n")

	res, err := e.AutoPromote(context.Background(), 0.7)
	if err != nil {
		t.Fatalf("AutoPromote: %v", err)
	}
	if res.PromotedCount != 0 || len(res.SkippedNotes) != 0 || len(res.Errors) != 0 {
		t.Errorf("inbox note must be invisible to the engine: %+v", res)
	}
	if !store.Exists("inbox/fresh.md") {
		t.Error("inbox note moved")
	}
}

func TestAutoPromote_Idempotent(t *testing.T) {
	e, store := setup(t)
	writeNote(t, store, "inbox/a.md", "type: fleeting\nstatus: promoted\nquality_score: 0.8\n")
	writeNote(t, store, "inbox/b.md", "type: literature\nstatus: promoted\nquality_score: 0.95\n")

	first, err := e.AutoPromote(context.Background(), 0)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.PromotedCount != 2 {
		t.Fatalf("first promoted = %d, want 2", first.PromotedCount)
	}
	if first.ByType["fleeting"] != 1 || first.ByType["literature"] != 1 {
		t.Errorf("by_type = %v", first.ByType)
	}

	second, err := e.AutoPromote(context.Background(), 0)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.PromotedCount != 0 || len(second.Errors) != 0 {
		t.Errorf("second run must promote nothing: %+v", second)
	}
}

func TestAutoPromote_PartialFailureIsolated(t *testing.T) {
	e, store := setup(t)
	writeNote(t, store, "inbox/one.md", "type: permanent\nstatus: promoted\nquality_score: 0.9\n")
	writeNote(t, store, "inbox/two.md", "type: permanent\nstatus: promoted\nquality_score: 0.9\n")
	// Occupy two.md's destination so its move fails.
	writeNote(t, store, "permanent/two.md", "type: permanent\nstatus: published\n")

	res, err := e.AutoPromote(context.Background(), 0.7)
	if err != nil {
		t.Fatalf("AutoPromote: %v", err)
	}
	if res.PromotedCount != 1 {
		t.Errorf("promoted = %d, want 1", res.PromotedCount)
	}
	if _, ok := res.Errors["inbox/two.md"]; !ok {
		t.Errorf("errors = %v, want entry for inbox/two.md", res.Errors)
	}
	if !store.Exists("inbox/two.md") {
		t.Error("failed note must remain at its source")
	}
	doc := readDoc(t, store, "inbox/two.md")
	if s, _ := doc.GetString(frontmatter.KeyStatus); s != "promoted" {
		t.Errorf("failed note's status = %q, want unchanged promoted", s)
	}
}

func TestAutoPromote_UsesLayoutThresholdByDefault(t *testing.T) {
	e, store := setup(t)
	// Layout default threshold is 0.7; 0.69 must not pass when threshold <= 0.
	writeNote(t, store, "inbox/edge.md", "type: permanent\nstatus: promoted\nquality_score: 0.69\n")

	res, err := e.AutoPromote(context.Background(), 0)
	if err != nil {
		t.Fatalf("AutoPromote: %v", err)
	}
	if res.PromotedCount != 0 {
		t.Errorf("promoted = %d, want 0", res.PromotedCount)
	}
	if res.SkippedNotes["inbox/edge.md"] != models.SkipBelowThreshold {
		t.Errorf("skipped = %v", res.SkippedNotes)
	}
}
