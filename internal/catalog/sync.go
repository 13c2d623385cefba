package catalog

import (
	"log/slog"

	"github.com/mvantol/ansuz/internal/frontmatter"
	"github.com/mvantol/ansuz/internal/markdown"
	"github.com/mvantol/ansuz/internal/models"
	"github.com/mvantol/ansuz/internal/storage"
)

// Sync walks the vault and brings the catalog up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the catalog
//
// Unparseable notes are skipped with a warning; they simply stay invisible to
// analytics until fixed.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := catalogFile(db, m, data); err != nil {
			logger.Warn("sync: catalog failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: catalogued", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteNote(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// catalogFile parses one note and upserts its lifecycle row and links.
func catalogFile(db *DB, meta models.NoteMetadata, data []byte) error {
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return err
	}
	rec := doc.Record(meta.Path)

	created := ""
	if rec.Created != nil {
		created = rec.Created.Format(models.DateLayout)
	}

	row := NoteRow{
		Path:      meta.Path,
		Title:     rec.Title,
		Type:      string(rec.Type),
		Status:    rec.Status,
		Quality:   rec.QualityScore,
		Checksum:  meta.Checksum,
		Tags:      rec.Tags,
		Created:   created,
		UpdatedAt: meta.UpdatedAt,
	}
	return db.UpsertNote(row, markdown.ExtractLinks(doc.Body()))
}
