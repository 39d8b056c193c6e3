// Package query filters and sorts a loaded collection for display.
package query

import (
	"net/url"
	"sort"
	"strings"

	"github.com/royfox/little-reviews/internal/models"
)

// FilterAll disables the media type filter.
const FilterAll = "all"

// SortKey selects the field results are ordered by.
type SortKey string

const (
	SortReviewDate  SortKey = "reviewDate"
	SortReleaseYear SortKey = "releaseYear"
	SortRating      SortKey = "rating"
)

// Direction is the sort direction.
type Direction string

const (
	Desc Direction = "desc"
	Asc  Direction = "asc"
)

// State is the transient filter/search/sort selection.
type State struct {
	FilterType    string    `json:"filterType"` // FilterAll or a models.MediaType value
	SearchTerm    string    `json:"searchTerm"`
	SortKey       SortKey   `json:"sortKey"`
	SortDirection Direction `json:"sortDirection"`
}

// DefaultState is the selection at startup.
func DefaultState() State {
	return State{
		FilterType:    FilterAll,
		SortKey:       SortReviewDate,
		SortDirection: Desc,
	}
}

// Apply returns the records matching s in the order s asks for. The input
// slice is not modified; equal keys keep their input order.
func Apply(records []models.Review, s State) []models.Review {
	term := strings.ToLower(s.SearchTerm)
	out := make([]models.Review, 0, len(records))
	for _, r := range records {
		if matchesType(r, s.FilterType) && matchesTerm(r, term) {
			out = append(out, r)
		}
	}

	cmp := comparator(s.SortKey)
	sign := 1
	if s.SortDirection == Asc {
		sign = -1
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sign*cmp(out[i], out[j]) > 0
	})
	return out
}

func matchesType(r models.Review, filter string) bool {
	return filter == "" || filter == FilterAll || string(r.Type) == filter
}

func matchesTerm(r models.Review, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), term) ||
		strings.Contains(strings.ToLower(r.Author), term)
}

// comparator returns a three-way compare where a positive result places a
// before b in descending order.
func comparator(key SortKey) func(a, b models.Review) int {
	switch key {
	case SortRating:
		return func(a, b models.Review) int { return compareFloat(a.Rating, b.Rating) }
	case SortReleaseYear:
		return func(a, b models.Review) int { return a.ReleaseYear - b.ReleaseYear }
	default:
		return func(a, b models.Review) int { return a.ReviewDate.Compare(b.ReviewDate) }
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// Counts returns the number of records per media type.
func Counts(records []models.Review) map[models.MediaType]int {
	counts := make(map[models.MediaType]int, len(models.MediaTypes))
	for _, t := range models.MediaTypes {
		counts[t] = 0
	}
	for _, r := range records {
		counts[r.Type]++
	}
	return counts
}

// ParseState reads a State from URL parameters type, q, sort and dir.
// Unknown values fall back to the defaults.
func ParseState(v url.Values) State {
	s := DefaultState()
	if t := v.Get("type"); t != "" && t != FilterAll {
		if mt, ok := models.ParseMediaType(t); ok {
			s.FilterType = string(mt)
		}
	}
	s.SearchTerm = strings.TrimSpace(v.Get("q"))
	switch k := SortKey(v.Get("sort")); k {
	case SortReviewDate, SortReleaseYear, SortRating:
		s.SortKey = k
	}
	if Direction(v.Get("dir")) == Asc {
		s.SortDirection = Asc
	}
	return s
}

// Values encodes s as URL parameters, omitting defaults.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.FilterType != "" && s.FilterType != FilterAll {
		v.Set("type", s.FilterType)
	}
	if s.SearchTerm != "" {
		v.Set("q", s.SearchTerm)
	}
	if s.SortKey != "" && s.SortKey != SortReviewDate {
		v.Set("sort", string(s.SortKey))
	}
	if s.SortDirection == Asc {
		v.Set("dir", string(Asc))
	}
	return v
}
