package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/royfox/little-reviews/internal/aggregate"
	"github.com/royfox/little-reviews/internal/models"
)

func TestStars(t *testing.T) {
	assert.Equal(t, "·····", Stars(0))
	assert.Equal(t, "★★★½·", Stars(3.5))
	assert.Equal(t, "★★★★★", Stars(5))
}

func TestStars_OutOfRangeClamped(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.Equal(t, "★★★★★", Stars(7))
		assert.Equal(t, "·····", Stars(-1))
	})
}

func TestReviewTable(t *testing.T) {
	out := ReviewTable([]models.Review{
		{ID: "dune", Title: "Dune", Author: "Frank Herbert", Type: models.Book, Rating: 4, ReleaseYear: 1965,
			ReviewDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	})
	for _, want := range []string{"ID", "TITLE", "dune", "Frank Herbert", "1965", "2024-01-01", "1 reviews"} {
		assert.Contains(t, out, want)
	}
}

func TestReviewTable_Empty(t *testing.T) {
	assert.Contains(t, ReviewTable(nil), "No reviews match.")
}

func TestBuildSummary(t *testing.T) {
	out := BuildSummary("public/reviews.json", aggregate.Report{
		Scanned:    3,
		Included:   1,
		Skipped:    []aggregate.Skip{{File: "bad.yaml", Reason: aggregate.ReasonParse, Err: errors.New("boom")}},
		Collisions: []aggregate.Collision{{ID: "x", Kept: "x.yml", Dropped: "x.yaml"}},
	})
	assert.True(t, strings.Contains(out, "scanned 3, included 1, skipped 1, collisions 1"))
	assert.Contains(t, out, "bad.yaml")
	assert.Contains(t, out, "x.yml replaced x.yaml")
}
