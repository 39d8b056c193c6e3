package index

import "github.com/royfox/little-reviews/internal/models"

// ReviewIndex is the search surface consumers depend on.
type ReviewIndex interface {
	Upsert(r models.Review, checksum string) error
	Delete(id string) error
	GetChecksum(id string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ ReviewIndex = (*DB)(nil)
