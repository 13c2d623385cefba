package catalog_test

import (
	"log/slog"
	"testing"

	"github.com/mvantol/ansuz/internal/catalog"
	"github.com/mvantol/ansuz/internal/testutil"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func quality(v float64) *float64 { return &v }

func TestUpsertAndChecksums(t *testing.T) {
	db := testutil.TestCatalog(t)
	row := catalog.NoteRow{Path: "inbox/a.md", Status: "inbox", Checksum: "c1", Tags: []string{"x"}}
	if err := db.UpsertNote(row, nil); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	row.Checksum = "c2"
	if err := db.UpsertNote(row, []string{"b"}); err != nil {
		t.Fatalf("UpsertNote update: %v", err)
	}
	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if cs["inbox/a.md"] != "c2" {
		t.Errorf("checksum = %q", cs["inbox/a.md"])
	}
}

func TestDeleteNote(t *testing.T) {
	db := testutil.TestCatalog(t)
	_ = db.UpsertNote(catalog.NoteRow{Path: "a.md", Checksum: "c"}, []string{"b"})
	if err := db.DeleteNote("a.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	total, err := db.TotalNotes()
	if err != nil {
		t.Fatalf("TotalNotes: %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}

func TestAggregates(t *testing.T) {
	db := testutil.TestCatalog(t)
	_ = db.UpsertNote(catalog.NoteRow{Path: "inbox/a.md", Status: "inbox", Quality: quality(0.4), Tags: []string{"go"}}, nil)
	_ = db.UpsertNote(catalog.NoteRow{Path: "inbox/b.md", Status: "promoted", Type: "permanent", Quality: quality(0.8), Tags: []string{"go", "zettel"}}, nil)
	_ = db.UpsertNote(catalog.NoteRow{Path: "permanent/c.md", Status: "published", Type: "permanent"}, nil)

	byStatus, err := db.CountByStatus()
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if byStatus["inbox"] != 1 || byStatus["promoted"] != 1 || byStatus["published"] != 1 {
		t.Errorf("by status = %v", byStatus)
	}

	byType, err := db.CountByType()
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if byType["permanent"] != 2 {
		t.Errorf("by type = %v", byType)
	}
	if _, ok := byType[""]; ok {
		t.Error("untyped notes must not appear in by-type counts")
	}

	avg, err := db.AverageQuality()
	if err != nil {
		t.Fatalf("AverageQuality: %v", err)
	}
	if avg < 0.59 || avg > 0.61 {
		t.Errorf("avg = %v, want ~0.6", avg)
	}

	tags, err := db.TagCounts()
	if err != nil {
		t.Fatalf("TagCounts: %v", err)
	}
	if tags["go"] != 2 || tags["zettel"] != 1 {
		t.Errorf("tags = %v", tags)
	}
}

func TestOldestWithStatus(t *testing.T) {
	db := testutil.TestCatalog(t)
	_ = db.UpsertNote(catalog.NoteRow{Path: "inbox/new.md", Status: "inbox", Created: "2026-08-20"}, nil)
	_ = db.UpsertNote(catalog.NoteRow{Path: "inbox/old.md", Status: "inbox", Created: "2026-07-01"}, nil)
	_ = db.UpsertNote(catalog.NoteRow{Path: "inbox/undated.md", Status: "inbox"}, nil)

	p, ok, err := db.OldestWithStatus("inbox")
	if err != nil {
		t.Fatalf("OldestWithStatus: %v", err)
	}
	if !ok || p != "inbox/old.md" {
		t.Errorf("oldest = %q ok=%v", p, ok)
	}

	_, ok, err = db.OldestWithStatus("archived")
	if err != nil {
		t.Fatalf("OldestWithStatus empty: %v", err)
	}
	if ok {
		t.Error("no archived notes expected")
	}
}

func TestSync_ReconcilesDisk(t *testing.T) {
	db := testutil.TestCatalog(t)
	_, store := testutil.TestVault(t)
	_ = store.Write("inbox/a.md", []byte("---\nstatus: inbox\ntags:\n  - t1\n---\nSee [[b]].\n"))
	_ = store.Write("permanent/b.md", []byte("---\ntype: permanent\nstatus: published\nquality_score: 0.9\n---\nx\n"))

	if err := catalog.Sync(db, store, discard()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	total, _ := db.TotalNotes()
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}

	// Remove one file; sync again drops the stale row.
	if err := store.Delete("inbox/a.md"); err != nil {
		t.Fatal(err)
	}
	if err := catalog.Sync(db, store, discard()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	total, _ = db.TotalNotes()
	if total != 1 {
		t.Errorf("total = %d, want 1", total)
	}
	byStatus, _ := db.CountByStatus()
	if byStatus["published"] != 1 {
		t.Errorf("by status = %v", byStatus)
	}
}
