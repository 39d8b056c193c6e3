// Package aggregate turns the Record Store into the ordered aggregate
// artifact consumed at run time.
package aggregate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/royfox/little-reviews/internal/apperr"
	"github.com/royfox/little-reviews/internal/checksum"
	"github.com/royfox/little-reviews/internal/metrics"
	"github.com/royfox/little-reviews/internal/models"
	"github.com/royfox/little-reviews/internal/record"
	"github.com/royfox/little-reviews/internal/storage"
)

// Skip reasons.
const (
	ReasonRead    = "read"
	ReasonParse   = "parse"
	ReasonShape   = "shape"
	ReasonInvalid = "invalid"
)

// Skip describes a record file left out of the artifact.
type Skip struct {
	File   string
	Reason string
	Err    error
}

// Collision describes two files that derived the same id. The record from
// Kept is in the artifact; Dropped was overwritten.
type Collision struct {
	ID      string
	Kept    string
	Dropped string
}

// Report summarises one aggregation run.
type Report struct {
	Scanned    int
	Included   int
	Skipped    []Skip
	Collisions []Collision
	Digest     string // checksum of the written artifact, set by Build
}

// Aggregator reads every record in a store and produces the ordered
// record sequence.
type Aggregator struct {
	source storage.Provider
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source used for release year validation.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// New returns an Aggregator reading from source.
func New(source storage.Provider, logger *slog.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{source: source, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Collect decodes every record file and returns the valid records ordered
// by review date, newest first. Files that cannot be read, parsed or
// validated are skipped and reported; only a failure to list the store is
// returned as an error.
func (a *Aggregator) Collect(ctx context.Context) ([]models.Review, Report, error) {
	var rep Report

	files, err := a.source.List()
	if err != nil {
		return nil, rep, fmt.Errorf("aggregate: list records: %w", err)
	}

	now := a.now()
	records := make([]models.Review, 0, len(files))
	byID := make(map[string]int, len(files))
	fileOf := make(map[string]string, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, rep, err
		}
		rep.Scanned++
		metrics.RecordsScanned.Inc()

		data, err := a.source.Read(f.Name)
		if err != nil {
			a.skip(&rep, f.Name, ReasonRead, err)
			continue
		}
		r, err := record.Decode(data, now)
		if err != nil {
			a.skip(&rep, f.Name, reason(err), err)
			continue
		}

		r.ID = f.ID()
		if i, dup := byID[r.ID]; dup {
			c := Collision{ID: r.ID, Kept: f.Name, Dropped: fileOf[r.ID]}
			rep.Collisions = append(rep.Collisions, c)
			metrics.RecordCollisions.Inc()
			a.logger.Warn("aggregate: duplicate record id, later file wins",
				slog.String("id", c.ID),
				slog.String("kept", c.Kept),
				slog.String("dropped", c.Dropped))
			records[i] = r
			fileOf[r.ID] = f.Name
			continue
		}
		byID[r.ID] = len(records)
		fileOf[r.ID] = f.Name
		records = append(records, r)
	}

	SortByReviewDate(records)
	rep.Included = len(records)
	return records, rep, nil
}

// Build collects the records and replaces the artifact at path with their
// JSON encoding. An empty store produces "[]".
func (a *Aggregator) Build(ctx context.Context, path string) (Report, error) {
	start := time.Now()
	defer func() { metrics.BuildDuration.Observe(time.Since(start).Seconds()) }()

	records, rep, err := a.Collect(ctx)
	if err != nil {
		return rep, err
	}
	data, err := Encode(records)
	if err != nil {
		return rep, err
	}
	if err := storage.WriteFileAtomic(path, data); err != nil {
		return rep, fmt.Errorf("aggregate: write artifact: %w", err)
	}
	rep.Digest = checksum.Sum(data)

	if rep.Included == 0 {
		a.logger.Warn("aggregate: no valid records found", slog.Int("scanned", rep.Scanned))
	}
	a.logger.Info("aggregate: artifact built",
		slog.String("path", path),
		slog.Int("scanned", rep.Scanned),
		slog.Int("included", rep.Included),
		slog.Int("skipped", len(rep.Skipped)),
		slog.Int("collisions", len(rep.Collisions)),
		slog.String("digest", rep.Digest))
	return rep, nil
}

// Encode renders records as the artifact document.
func Encode(records []models.Review) ([]byte, error) {
	if records == nil {
		records = []models.Review{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("aggregate: encode artifact: %w", err)
	}
	return append(data, '\n'), nil
}

// SortByReviewDate orders records newest first, keeping scan order for ties.
func SortByReviewDate(records []models.Review) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ReviewDate.After(records[j].ReviewDate)
	})
}

func (a *Aggregator) skip(rep *Report, file, why string, err error) {
	rep.Skipped = append(rep.Skipped, Skip{File: file, Reason: why, Err: err})
	metrics.RecordsSkipped.WithLabelValues(why).Inc()
	a.logger.Warn("aggregate: skipping record",
		slog.String("file", file),
		slog.String("reason", why),
		slog.String("error", err.Error()))
}

func reason(err error) string {
	switch {
	case errors.Is(err, apperr.ErrNotMapping):
		return ReasonShape
	case errors.Is(err, apperr.ErrInvalidRecord):
		return ReasonInvalid
	default:
		return ReasonParse
	}
}
