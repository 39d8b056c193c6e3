package record

import (
	"errors"
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/royfox/little-reviews/internal/models"
)

const (
	MinRating      = 0.0
	MaxRating      = 5.0
	MinReleaseYear = 1800
)

// MaxReleaseYear is the latest plausible release year relative to now.
func MaxReleaseYear(now time.Time) int {
	return now.Year() + 5
}

// Validate checks r against the record field rules. Author is never
// required here; see authoring for the stricter form rules.
func Validate(r models.Review, now time.Time) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Type, validation.Required, validation.In(toAny(models.MediaTypes)...).Error("must be one of Movie, TV Show, Book, Music")),
		validation.Field(&r.Rating, validation.By(HalfStepRating)),
		validation.Field(&r.ReleaseYear, validation.Required, validation.Min(MinReleaseYear), validation.Max(MaxReleaseYear(now))),
		validation.Field(&r.ReviewDate, validation.Required),
		validation.Field(&r.UpdatedDate, validation.By(notBefore(r.ReviewDate))),
	)
}

// HalfStepRating is an ozzo rule: the value must be a float64 in [0,5] on
// a 0.5 step.
func HalfStepRating(value any) error {
	v, ok := value.(float64)
	if !ok {
		return errors.New("must be a number")
	}
	if v < MinRating || v > MaxRating {
		return errors.New("must be between 0 and 5")
	}
	if math.Mod(v*2, 1) != 0 {
		return errors.New("must be a whole or half step")
	}
	return nil
}

func notBefore(start time.Time) validation.RuleFunc {
	return func(value any) error {
		var t time.Time
		switch v := value.(type) {
		case *time.Time:
			if v == nil {
				return nil
			}
			t = *v
		case time.Time:
			t = v
		default:
			return nil
		}
		if t.Before(start) {
			return errors.New("must not be before reviewDate")
		}
		return nil
	}
}

func toAny(types []models.MediaType) []any {
	out := make([]any, len(types))
	for i, t := range types {
		out[i] = t
	}
	return out
}
