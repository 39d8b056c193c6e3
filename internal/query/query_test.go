package query

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/royfox/little-reviews/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func sample() []models.Review {
	return []models.Review{
		{ID: "b", Title: "Blade Runner", Type: models.Movie, Rating: 5, ReleaseYear: 1982, ReviewDate: day("2024-03-01")},
		{ID: "c", Title: "Kind of Blue", Author: "Miles Davis", Type: models.Music, Rating: 4.5, ReleaseYear: 1959, ReviewDate: day("2024-02-01")},
		{ID: "a", Title: "Dune", Author: "Frank Herbert", Type: models.Book, Rating: 4, ReleaseYear: 1965, ReviewDate: day("2024-01-01")},
	}
}

func ids(records []models.Review) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestApply_DefaultIsReviewDateDesc(t *testing.T) {
	got := Apply(sample(), DefaultState())
	assert.Equal(t, []string{"b", "c", "a"}, ids(got))
}

func TestApply_ReviewDateAsc(t *testing.T) {
	s := DefaultState()
	s.SortDirection = Asc
	assert.Equal(t, []string{"a", "c", "b"}, ids(Apply(sample(), s)))
}

func TestApply_SortKeys(t *testing.T) {
	s := DefaultState()
	s.SortKey = SortReleaseYear
	assert.Equal(t, []string{"b", "a", "c"}, ids(Apply(sample(), s)))

	s.SortKey = SortRating
	s.SortDirection = Asc
	assert.Equal(t, []string{"a", "c", "b"}, ids(Apply(sample(), s)))
}

func TestApply_Filters(t *testing.T) {
	s := DefaultState()
	s.FilterType = string(models.Book)
	assert.Equal(t, []string{"a"}, ids(Apply(sample(), s)))

	s = DefaultState()
	s.SearchTerm = "MILES"
	assert.Equal(t, []string{"c"}, ids(Apply(sample(), s)), "matches author")

	s.SearchTerm = "blade"
	assert.Equal(t, []string{"b"}, ids(Apply(sample(), s)), "matches title")

	s.FilterType = string(models.Music)
	assert.Empty(t, Apply(sample(), s), "type and text are combined with AND")
}

func TestApply_StableOnEqualKeys(t *testing.T) {
	records := []models.Review{
		{ID: "x", Rating: 3}, {ID: "y", Rating: 3}, {ID: "z", Rating: 3},
	}
	s := DefaultState()
	s.SortKey = SortRating
	assert.Equal(t, []string{"x", "y", "z"}, ids(Apply(records, s)))
	s.SortDirection = Asc
	assert.Equal(t, []string{"x", "y", "z"}, ids(Apply(records, s)))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := sample()
	before := ids(in)
	s := DefaultState()
	s.SortDirection = Asc
	out := Apply(in, s)
	out[0].Title = "changed"

	assert.Equal(t, before, ids(in))
	assert.Equal(t, "Blade Runner", in[0].Title)
}

func TestApply_Empty(t *testing.T) {
	got := Apply(nil, DefaultState())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func randomRecords(r *rand.Rand, n int) []models.Review {
	words := []string{"night", "river", "blue", "stone", "glass"}
	out := make([]models.Review, n)
	for i := range out {
		out[i] = models.Review{
			ID:          fmt.Sprintf("r%d", i),
			Title:       words[r.Intn(len(words))] + " " + words[r.Intn(len(words))],
			Type:        models.MediaTypes[r.Intn(len(models.MediaTypes))],
			Rating:      float64(r.Intn(11)) / 2,
			ReleaseYear: 1950 + r.Intn(70),
			ReviewDate:  day("2020-01-01").Add(time.Duration(r.Intn(1000)) * 24 * time.Hour),
		}
		if r.Intn(2) == 0 {
			out[i].Author = words[r.Intn(len(words))]
		}
	}
	return out
}

func key(k SortKey, r models.Review) float64 {
	switch k {
	case SortRating:
		return r.Rating
	case SortReleaseYear:
		return float64(r.ReleaseYear)
	}
	return float64(r.ReviewDate.Unix())
}

func TestApply_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	filters := []string{FilterAll, string(models.Movie), string(models.TVShow), string(models.Book), string(models.Music)}
	terms := []string{"", "ri", "BLUE", "zzz"}

	for iter := 0; iter < 50; iter++ {
		records := randomRecords(rng, 25)
		for _, f := range filters {
			for _, term := range terms {
				for _, k := range []SortKey{SortReviewDate, SortReleaseYear, SortRating} {
					for _, d := range []Direction{Desc, Asc} {
						s := State{FilterType: f, SearchTerm: term, SortKey: k, SortDirection: d}
						out := Apply(records, s)

						want := 0
						for _, r := range records {
							typeOK := f == FilterAll || string(r.Type) == f
							lt := strings.ToLower(term)
							textOK := term == "" ||
								strings.Contains(strings.ToLower(r.Title), lt) ||
								strings.Contains(strings.ToLower(r.Author), lt)
							if typeOK && textOK {
								want++
							}
						}
						require.Len(t, out, want, "filter %+v", s)

						for i := 1; i < len(out); i++ {
							x, y := key(k, out[i-1]), key(k, out[i])
							if d == Desc {
								require.GreaterOrEqual(t, x, y, "sort %+v", s)
							} else {
								require.LessOrEqual(t, x, y, "sort %+v", s)
							}
						}
					}
				}
			}
		}
	}
}

func TestCounts(t *testing.T) {
	c := Counts(sample())
	assert.Equal(t, 1, c[models.Movie])
	assert.Equal(t, 0, c[models.TVShow])
	assert.Equal(t, 1, c[models.Book])
	assert.Equal(t, 1, c[models.Music])
}

func TestParseState(t *testing.T) {
	assert.Equal(t, DefaultState(), ParseState(url.Values{}))

	s := ParseState(url.Values{"type": {"tv"}, "q": {" dune "}, "sort": {"rating"}, "dir": {"asc"}})
	assert.Equal(t, State{FilterType: "TV Show", SearchTerm: "dune", SortKey: SortRating, SortDirection: Asc}, s)

	s = ParseState(url.Values{"type": {"podcast"}, "sort": {"title"}, "dir": {"sideways"}})
	assert.Equal(t, DefaultState(), s)

	round := State{FilterType: "Book", SearchTerm: "x", SortKey: SortReleaseYear, SortDirection: Asc}
	assert.Equal(t, round, ParseState(round.Values()))
	assert.Empty(t, DefaultState().Values())
}
