package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"github.com/mvantol/ansuz/internal/enrich"
	"github.com/mvantol/ansuz/internal/frontmatter"
	"github.com/mvantol/ansuz/internal/markdown"
	"github.com/mvantol/ansuz/internal/models"
)

// Orphans discovers permanent-area notes with no cross-references in either
// direction and, outside dry-run mode, retires them to the archive. The only
// status transition it may perform is published → archived.
type Orphans struct {
	base
	permanentDir string
	archiveDir   string
}

// NewOrphans creates an orphan-remediation coordinator for root. The
// enrichment delegate is part of the shared contract but unused here.
func NewOrphans(root string, _ enrich.Enricher, logger *slog.Logger) (*Orphans, error) {
	b, err := newBase(root, logger)
	if err != nil {
		return nil, err
	}
	return &Orphans{
		base:         b,
		permanentDir: b.layout.Dirs.Permanent,
		archiveDir:   b.layout.Dirs.Archive,
	}, nil
}

// scannedNote is one node of the link graph.
type scannedNote struct {
	path string
	doc  *frontmatter.Doc
	out  []string // outbound targets, by bare note name
}

// Remediate builds the link graph over the permanent area and reports notes
// with zero inbound and zero outbound references. With dryRun false each
// orphan is moved to the archive with status archived. Per-note failures are
// recorded and never abort the pass.
func (o *Orphans) Remediate(ctx context.Context, dryRun bool) (*models.OrphanReport, error) {
	metas, err := o.store.List(o.permanentDir)
	if err != nil {
		return nil, fmt.Errorf("orphans: scan permanent area: %w", err)
	}

	report := &models.OrphanReport{DryRun: dryRun, Errors: map[string]string{}}

	var notes []scannedNote
	// Several notes may share a basename across subdirectories; a link by
	// bare name refers to all of them.
	byName := map[string][]int{}
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := o.store.Read(meta.Path)
		if err != nil {
			report.Errors[meta.Path] = err.Error()
			continue
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			report.Errors[meta.Path] = err.Error()
			continue
		}
		name := markdown.NoteName(meta.Path)
		byName[name] = append(byName[name], len(notes))
		notes = append(notes, scannedNote{
			path: meta.Path,
			doc:  doc,
			out:  markdown.ExtractLinks(doc.Body()),
		})
	}
	report.Scanned = len(notes)

	// An edge exists only when the target resolves to another scanned note;
	// dangling links connect nothing.
	inbound := make([]int, len(notes))
	outbound := make([]int, len(notes))
	for i, n := range notes {
		for _, target := range n.out {
			for _, j := range byName[target] {
				if j == i {
					continue
				}
				outbound[i]++
				inbound[j]++
			}
		}
	}

	for i, n := range notes {
		if inbound[i] != 0 || outbound[i] != 0 {
			continue
		}
		// Only published notes are candidates; anything else in the permanent
		// area is some other workflow's business.
		if status, _ := n.doc.GetString(frontmatter.KeyStatus); status != o.layout.Statuses.Published {
			continue
		}
		report.Orphans = append(report.Orphans, n.path)
		if dryRun {
			continue
		}
		if err := o.archive(n); err != nil {
			report.Errors[n.path] = err.Error()
			continue
		}
		report.Archived = append(report.Archived, n.path)
	}

	o.logger.Info("orphan remediation finished",
		slog.Int("scanned", report.Scanned),
		slog.Int("orphans", len(report.Orphans)),
		slog.Int("archived", len(report.Archived)),
		slog.Bool("dry_run", dryRun))
	return report, nil
}

// archive retires one orphan: status archived, rewritten into the archive
// area, source removed only after the destination exists.
func (o *Orphans) archive(n scannedNote) error {
	n.doc.SetString(frontmatter.KeyStatus, o.layout.Statuses.Archived)
	out, err := n.doc.Bytes()
	if err != nil {
		return err
	}
	dest := path.Join(o.archiveDir, path.Base(n.path))
	if err := o.store.WriteNew(dest, out); err != nil {
		return err
	}
	return o.store.Delete(n.path)
}
