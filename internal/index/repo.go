package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/royfox/little-reviews/internal/models"
)

// SearchResult is one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Upsert inserts or replaces a review and its FTS entry in one transaction.
func (db *DB) Upsert(r models.Review, checksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO reviews (id, title, author, type, body, checksum, review_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			author      = excluded.author,
			type        = excluded.type,
			body        = excluded.body,
			checksum    = excluded.checksum,
			review_date = excluded.review_date
	`, r.ID, r.Title, r.Author, string(r.Type), r.Text, checksum, r.ReviewDate)
	if err != nil {
		return fmt.Errorf("index: upsert review: %w", err)
	}

	if err := ftsUpsert(tx, r.ID, r.Title, r.Author, r.Text); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a review and its FTS entry.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete review: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a review, or "" if it is not
// indexed.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM reviews WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id -> checksum for every indexed review.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM reviews`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
