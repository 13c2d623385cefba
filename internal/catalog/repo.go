package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Path      string
	Title     string
	Type      string
	Status    string
	Quality   *float64
	Checksum  string
	Tags      []string
	Created   string // date stamp, empty when unset
	UpdatedAt time.Time
}

// UpsertNote inserts or replaces a note and its outgoing links in one
// transaction.
func (db *DB) UpsertNote(n NoteRow, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(n.Tags)

	_, err = tx.Exec(`
		INSERT INTO notes (path, title, type, status, quality, checksum, tags, created, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			type       = excluded.type,
			status     = excluded.status,
			quality    = excluded.quality,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			created    = excluded.created,
			updated_at = excluded.updated_at
	`, n.Path, n.Title, n.Type, n.Status, n.Quality, n.Checksum, string(tagsJSON), n.Created, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("catalog: upsert note: %w", err)
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, n.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("catalog: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if _, err := stmt.Exec(n.Path, target); err != nil {
				return fmt.Errorf("catalog: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteNote removes a note and its outgoing links.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM notes WHERE path = ?`, path)

	return tx.Commit()
}

// AllChecksums returns path → checksum for every catalogued note.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// TotalNotes returns the number of catalogued notes.
func (db *DB) TotalNotes() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM notes`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("catalog: count notes: %w", err)
	}
	return n, nil
}

// CountByStatus returns note counts grouped by status.
func (db *DB) CountByStatus() (map[string]int, error) {
	return db.countGrouped(`SELECT status, COUNT(*) FROM notes GROUP BY status`)
}

// CountByType returns note counts grouped by type, skipping untyped notes.
func (db *DB) CountByType() (map[string]int, error) {
	return db.countGrouped(`SELECT type, COUNT(*) FROM notes WHERE type != '' GROUP BY type`)
}

func (db *DB) countGrouped(query string) (map[string]int, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("catalog: group count: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key] = n
	}
	return out, rows.Err()
}

// AverageQuality returns the mean quality score over scored notes, or zero
// when none are scored.
func (db *DB) AverageQuality() (float64, error) {
	var avg sql.NullFloat64
	err := db.conn.QueryRow(`SELECT AVG(quality) FROM notes WHERE quality IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("catalog: average quality: %w", err)
	}
	return avg.Float64, nil
}

// TagCounts returns how many notes carry each tag.
func (db *DB) TagCounts() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT tags FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("catalog: tag counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			continue
		}
		for _, t := range tags {
			out[t]++
		}
	}
	return out, rows.Err()
}

// OldestWithStatus returns the path of the oldest note in the given status,
// preferring the created stamp and breaking ties lexically.
func (db *DB) OldestWithStatus(status string) (string, bool, error) {
	var p string
	err := db.conn.QueryRow(`
		SELECT path FROM notes
		WHERE status = ?
		ORDER BY CASE WHEN created IS NULL OR created = '' THEN 1 ELSE 0 END,
		         created, path
		LIMIT 1
	`, status).Scan(&p)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("catalog: oldest with status: %w", err)
	}
	return p, true, nil
}
