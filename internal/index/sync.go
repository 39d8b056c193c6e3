package index

import (
	"log/slog"

	"github.com/royfox/little-reviews/internal/checksum"
	"github.com/royfox/little-reviews/internal/models"
)

// SyncStats counts what a Sync changed.
type SyncStats struct {
	Upserted int
	Removed  int
}

// Sync brings the index up to date with records:
//   - new/changed reviews (by checksum) are upserted
//   - reviews no longer present are deleted
func Sync(db ReviewIndex, records []models.Review, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats
	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	present := make(map[string]struct{}, len(records))
	for _, r := range records {
		present[r.ID] = struct{}{}

		cs := checksum.JSON(r)
		if checksums[r.ID] == cs {
			continue
		}
		if err := db.Upsert(r, cs); err != nil {
			logger.Warn("sync: index failed", slog.String("id", r.ID), slog.String("error", err.Error()))
			continue
		}
		stats.Upserted++
		logger.Debug("sync: indexed", slog.String("id", r.ID))
	}

	for id := range checksums {
		if _, ok := present[id]; ok {
			continue
		}
		if err := db.Delete(id); err != nil {
			logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("id", id))
	}
	return stats, nil
}
