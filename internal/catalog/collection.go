// Package catalog loads the aggregate artifact once per session and exposes
// it as an immutable in-memory collection.
package catalog

import "github.com/royfox/little-reviews/internal/models"

// Collection is the loaded, read-only sequence of reviews in artifact order.
type Collection struct {
	records []models.Review
	byID    map[string]int
}

// NewCollection indexes records. The slice is copied; later changes by the
// caller are not visible.
func NewCollection(records []models.Review) *Collection {
	c := &Collection{
		records: append([]models.Review(nil), records...),
		byID:    make(map[string]int, len(records)),
	}
	for i, r := range c.records {
		c.byID[r.ID] = i
	}
	return c
}

// All returns a copy of every record in artifact order.
func (c *Collection) All() []models.Review {
	if c == nil {
		return []models.Review{}
	}
	return append([]models.Review{}, c.records...)
}

// Get returns the record with id.
func (c *Collection) Get(id string) (models.Review, bool) {
	if c == nil {
		return models.Review{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return models.Review{}, false
	}
	return c.records[i], true
}

// Len returns the number of records.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}
