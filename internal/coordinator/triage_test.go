package coordinator

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mvantol/ansuz/internal/layout"
	"github.com/mvantol/ansuz/internal/storage"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func freshRoot(t *testing.T) string {
	t.Helper()
	layout.ResetCache()
	t.Cleanup(layout.ResetCache)
	return t.TempDir()
}

func rawStore(t *testing.T, root string) storage.Provider {
	t.Helper()
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store
}

func TestTriage_RanksByQualityAndAge(t *testing.T) {
	root := freshRoot(t)
	tr, err := NewTriage(root, nil, discard())
	if err != nil {
		t.Fatalf("NewTriage: %v", err)
	}
	tr.now = func() time.Time { return time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC) }

	store := rawStore(t, root)
	mustWrite := func(path, content string) {
		t.Helper()
		if err := store.Write(path, []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("inbox/high.md", "---\nstatus: inbox\nquality_score: 0.9\ncreated: 2026-08-22\n---\nx\n")
	mustWrite("inbox/low.md", "---\nstatus: inbox\nquality_score: 0.1\ncreated: 2026-08-22\n---\nx\n")
	mustWrite("inbox/old.md", "---\nstatus: inbox\nquality_score: 0.1\ncreated: 2026-06-01\n---\nx\n")

	report, err := tr.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Total != 3 {
		t.Fatalf("total = %d, want 3", report.Total)
	}
	if report.Entries[0].Path != "inbox/high.md" {
		t.Errorf("top entry = %q, want high-quality note", report.Entries[0].Path)
	}
	// Same quality, but the older note outranks the fresh one.
	var lowRank, oldRank float64
	for _, e := range report.Entries {
		switch e.Path {
		case "inbox/low.md":
			lowRank = e.Rank
		case "inbox/old.md":
			oldRank = e.Rank
		}
	}
	if oldRank <= lowRank {
		t.Errorf("old note rank %v should exceed fresh note rank %v", oldRank, lowRank)
	}
}

func TestTriage_DoesNotMutate(t *testing.T) {
	root := freshRoot(t)
	tr, err := NewTriage(root, nil, discard())
	if err != nil {
		t.Fatalf("NewTriage: %v", err)
	}
	store := rawStore(t, root)
	content := "---\nstatus: inbox\n---\nbody\n"
	if err := store.Write("inbox/n.md", []byte(content)); err != nil {
		t.Fatal(err)
	}

	if _, err := tr.Report(context.Background()); err != nil {
		t.Fatalf("Report: %v", err)
	}
	after, _ := store.Read("inbox/n.md")
	if string(after) != content {
		t.Error("triage mutated a note")
	}
}

func TestTriage_SkipsUnparseableNotes(t *testing.T) {
	root := freshRoot(t)
	tr, err := NewTriage(root, nil, discard())
	if err != nil {
		t.Fatalf("NewTriage: %v", err)
	}
	store := rawStore(t, root)
	_ = store.Write("inbox/good.md", []byte("---\nstatus: inbox\n---\nx\n"))
	_ = store.Write("inbox/bad.md", []byte("---\nnever closed\n"))

	report, err := tr.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if report.Total != 1 || report.Entries[0].Path != "inbox/good.md" {
		t.Errorf("report = %+v", report)
	}
}
