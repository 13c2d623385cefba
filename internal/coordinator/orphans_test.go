package coordinator

import (
	"context"
	"testing"

	"github.com/mvantol/ansuz/internal/frontmatter"
)

func TestOrphans_DryRunReportsWithoutMoving(t *testing.T) {
	root := freshRoot(t)
	o, err := NewOrphans(root, nil, discard())
	if err != nil {
		t.Fatalf("NewOrphans: %v", err)
	}
	store := rawStore(t, root)
	_ = store.Write("permanent/hub.md", []byte("---\nstatus: published\n---\nLinks to [[spoke]].\n"))
	_ = store.Write("permanent/spoke.md", []byte("---\nstatus: published\n---\nNo outbound links.\n"))
	_ = store.Write("permanent/island.md", []byte("---\nstatus: published\n---\nNothing refers here.\n"))

	report, err := o.Remediate(context.Background(), true)
	if err != nil {
		t.Fatalf("Remediate: %v", err)
	}
	if report.Scanned != 3 {
		t.Errorf("scanned = %d, want 3", report.Scanned)
	}
	if len(report.Orphans) != 1 || report.Orphans[0] != "permanent/island.md" {
		t.Errorf("orphans = %v", report.Orphans)
	}
	if len(report.Archived) != 0 {
		t.Errorf("dry run archived %v", report.Archived)
	}
	if !store.Exists("permanent/island.md") {
		t.Error("dry run moved a note")
	}
}

func TestOrphans_ArchivesWithStatusTransition(t *testing.T) {
	root := freshRoot(t)
	o, err := NewOrphans(root, nil, discard())
	if err != nil {
		t.Fatalf("NewOrphans: %v", err)
	}
	store := rawStore(t, root)
	_ = store.Write("permanent/a.md", []byte("---\nstatus: published\n---\nSee [[b]].\n"))
	_ = store.Write("permanent/b.md", []byte("---\nstatus: published\n---\nx\n"))
	_ = store.Write("permanent/lonely.md", []byte("---\nstatus: published\n---\nx\n"))

	report, err := o.Remediate(context.Background(), false)
	if err != nil {
		t.Fatalf("Remediate: %v", err)
	}
	if len(report.Archived) != 1 || report.Archived[0] != "permanent/lonely.md" {
		t.Fatalf("archived = %v", report.Archived)
	}
	if store.Exists("permanent/lonely.md") {
		t.Error("archived note still in permanent area")
	}
	data, err := store.Read("archive/lonely.md")
	if err != nil {
		t.Fatalf("read archived note: %v", err)
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		t.Fatalf("parse archived note: %v", err)
	}
	if s, _ := doc.GetString(frontmatter.KeyStatus); s != "archived" {
		t.Errorf("status = %q, want archived", s)
	}
	// Linked notes stay put.
	if !store.Exists("permanent/a.md") || !store.Exists("permanent/b.md") {
		t.Error("connected notes must not move")
	}
}

func TestOrphans_MarkdownLinksCount(t *testing.T) {
	root := freshRoot(t)
	o, err := NewOrphans(root, nil, discard())
	if err != nil {
		t.Fatalf("NewOrphans: %v", err)
	}
	store := rawStore(t, root)
	_ = store.Write("permanent/src.md", []byte("---\nstatus: published\n---\nRead [target](target.md).\n"))
	_ = store.Write("permanent/target.md", []byte("---\nstatus: published\n---\nx\n"))

	report, err := o.Remediate(context.Background(), true)
	if err != nil {
		t.Fatalf("Remediate: %v", err)
	}
	if len(report.Orphans) != 0 {
		t.Errorf("orphans = %v, markdown link should connect both notes", report.Orphans)
	}
}

func TestOrphans_SharedBasenamesAllReceiveInboundCredit(t *testing.T) {
	root := freshRoot(t)
	o, err := NewOrphans(root, nil, discard())
	if err != nil {
		t.Fatalf("NewOrphans: %v", err)
	}
	store := rawStore(t, root)
	_ = store.Write("permanent/topics/shared.md", []byte("---\nstatus: published\n---\nx\n"))
	_ = store.Write("permanent/projects/shared.md", []byte("---\nstatus: published\n---\nx\n"))
	_ = store.Write("permanent/hub.md", []byte("---\nstatus: published\n---\nSee [[shared]].\n"))

	report, err := o.Remediate(context.Background(), true)
	if err != nil {
		t.Fatalf("Remediate: %v", err)
	}
	if len(report.Orphans) != 0 {
		t.Errorf("orphans = %v, every note sharing the linked basename must be connected", report.Orphans)
	}
}

func TestOrphans_UnpublishedNotesAreNotCandidates(t *testing.T) {
	root := freshRoot(t)
	o, err := NewOrphans(root, nil, discard())
	if err != nil {
		t.Fatalf("NewOrphans: %v", err)
	}
	store := rawStore(t, root)
	_ = store.Write("permanent/draft.md", []byte("---\nstatus: promoted\n---\nno links\n"))

	report, err := o.Remediate(context.Background(), false)
	if err != nil {
		t.Fatalf("Remediate: %v", err)
	}
	if len(report.Orphans) != 0 || len(report.Archived) != 0 {
		t.Errorf("report = %+v, non-published notes must be left alone", report)
	}
	if !store.Exists("permanent/draft.md") {
		t.Error("non-published note moved")
	}
}

func TestOrphans_DanglingLinkDoesNotConnect(t *testing.T) {
	root := freshRoot(t)
	o, err := NewOrphans(root, nil, discard())
	if err != nil {
		t.Fatalf("NewOrphans: %v", err)
	}
	store := rawStore(t, root)
	_ = store.Write("permanent/dangling.md", []byte("---\nstatus: published\n---\nSee [[nowhere]].\n"))

	report, err := o.Remediate(context.Background(), true)
	if err != nil {
		t.Fatalf("Remediate: %v", err)
	}
	if len(report.Orphans) != 1 {
		t.Errorf("orphans = %v, dangling link must not count as an edge", report.Orphans)
	}
}
