// Package authoring turns an entered draft into a single-record document the
// author places into the record store by hand.
package authoring

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/royfox/little-reviews/internal/models"
	"github.com/royfox/little-reviews/internal/record"
)

// Draft is what the author entered in the form.
type Draft struct {
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Author      string  `json:"author,omitempty"`
	Rating      float64 `json:"rating"`
	Text        string  `json:"text"`
	ReleaseYear int     `json:"releaseYear"`
}

// Validate applies the form rules. now bounds the release year.
func (d Draft) Validate(now time.Time) error {
	mt, _ := models.ParseMediaType(d.Type)
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Required),
		validation.Field(&d.Type, validation.Required, validation.By(knownType)),
		validation.Field(&d.Author, validation.When(mt.NeedsAuthor(), validation.Required)),
		validation.Field(&d.Rating, validation.By(record.HalfStepRating)),
		validation.Field(&d.Text, validation.Required),
		validation.Field(&d.ReleaseYear, validation.Required,
			validation.Min(record.MinReleaseYear), validation.Max(record.MaxReleaseYear(now))),
	)
}

func knownType(value any) error {
	s, _ := value.(string)
	if _, ok := models.ParseMediaType(s); !ok {
		return validation.NewError("validation_media_type", "must be one of Movie, TV Show, Book, Music")
	}
	return nil
}

// Output is a downloadable record document.
type Output struct {
	FileName string
	Content  []byte
	Review   models.Review
}

// NewRecord builds a fresh record from d with a new unique id and
// reviewDate set to now.
func NewRecord(d Draft, now time.Time) (Output, error) {
	if err := d.Validate(now); err != nil {
		return Output{}, fmt.Errorf("authoring: %w", err)
	}
	r := d.apply(models.Review{ID: NewID(d.Title), ReviewDate: now.UTC()})
	return output(r)
}

// UpdateRecord applies d to existing, keeping its id and reviewDate and
// setting updatedDate to now.
func UpdateRecord(existing models.Review, d Draft, now time.Time) (Output, error) {
	if err := d.Validate(now); err != nil {
		return Output{}, fmt.Errorf("authoring: %w", err)
	}
	updated := now.UTC()
	if updated.Before(existing.ReviewDate) {
		updated = existing.ReviewDate
	}
	r := d.apply(models.Review{
		ID:          existing.ID,
		ReviewDate:  existing.ReviewDate,
		UpdatedDate: &updated,
	})
	return output(r)
}

// FromReview returns the draft that reproduces r in the form.
func FromReview(r models.Review) Draft {
	return Draft{
		Title:       r.Title,
		Type:        string(r.Type),
		Author:      r.Author,
		Rating:      r.Rating,
		Text:        r.Text,
		ReleaseYear: r.ReleaseYear,
	}
}

// NewID returns "<slug of title>-<8 hex>", or a bare UUID when the title
// has no sluggable characters.
func NewID(title string) string {
	id := uuid.New()
	s := slug.Make(title)
	if s == "" {
		return id.String()
	}
	return s + "-" + strings.ReplaceAll(id.String(), "-", "")[:8]
}

// apply copies d onto r. Surrounding whitespace is dropped from the text
// fields, matching what record.Decode keeps.
func (d Draft) apply(r models.Review) models.Review {
	mt, _ := models.ParseMediaType(d.Type)
	r.Title = strings.TrimSpace(d.Title)
	r.Type = mt
	r.Rating = d.Rating
	r.Text = strings.TrimSpace(d.Text)
	r.ReleaseYear = d.ReleaseYear
	if mt.NeedsAuthor() {
		r.Author = strings.TrimSpace(d.Author)
	}
	return r
}

func output(r models.Review) (Output, error) {
	content, err := record.Encode(r)
	if err != nil {
		return Output{}, fmt.Errorf("authoring: %w", err)
	}
	return Output{FileName: r.ID + ".yaml", Content: content, Review: r}, nil
}
