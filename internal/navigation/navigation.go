// Package navigation keeps the list/detail/edit view state in step with a
// shareable location string.
package navigation

import (
	"net/url"
	"strings"

	"github.com/royfox/little-reviews/internal/models"
)

// Param is the location query parameter naming the open review.
const Param = "review"

// View is the current screen.
type View string

const (
	ViewList   View = "list"
	ViewDetail View = "detail"
	ViewEdit   View = "edit"
)

// State is the navigation state. ActiveID is empty for the list view and
// for a brand-new record in the edit view.
type State struct {
	View     View   `json:"view"`
	ActiveID string `json:"activeId,omitempty"`
}

// Location is the shareable location string plus its history.
type Location interface {
	// Search returns the current query string, with or without the leading '?'.
	Search() string
	// Push records a new history entry with the given query string.
	Push(search string)
}

// Resolver looks a review up by id.
type Resolver interface {
	Get(id string) (models.Review, bool)
}

// Synchronizer owns the navigation state for one session.
type Synchronizer struct {
	loc   Location
	state State
}

// New returns a Synchronizer bound to loc. Call Init before use.
func New(loc Location) *Synchronizer {
	return &Synchronizer{loc: loc, state: State{View: ViewList}}
}

// FromSearch derives the state a location string encodes.
func FromSearch(search string) State {
	values, err := url.ParseQuery(strings.TrimPrefix(search, "?"))
	if err != nil {
		return State{View: ViewList}
	}
	if id := values.Get(Param); id != "" {
		return State{View: ViewDetail, ActiveID: id}
	}
	return State{View: ViewList}
}

// SearchFor returns the location string for an open review, or "" for none.
func SearchFor(id string) string {
	if id == "" {
		return ""
	}
	return "?" + url.Values{Param: {id}}.Encode()
}

// Init derives the initial state from the location.
func (s *Synchronizer) Init() State {
	s.state = FromSearch(s.loc.Search())
	return s.state
}

// LocationChanged re-derives the state after external navigation.
func (s *Synchronizer) LocationChanged() State {
	return s.Init()
}

// State returns the current state.
func (s *Synchronizer) State() State {
	return s.state
}

// Open shows the detail view for id and pushes it into the location. An
// empty id has no detail view and opens the list.
func (s *Synchronizer) Open(id string) State {
	if id == "" {
		return s.toList()
	}
	s.state = State{View: ViewDetail, ActiveID: id}
	s.loc.Push(SearchFor(id))
	return s.state
}

// Edit switches to the edit view for an existing review. The location is
// left as it is.
func (s *Synchronizer) Edit(id string) State {
	s.state = State{View: ViewEdit, ActiveID: id}
	return s.state
}

// NewRecord switches to the edit view for a brand-new review.
func (s *Synchronizer) NewRecord() State {
	return s.Edit("")
}

// Cancel leaves the edit view: back to the detail of the edited review when
// it still resolves, otherwise back to the list.
func (s *Synchronizer) Cancel(r Resolver) State {
	id := s.state.ActiveID
	if id != "" && r != nil {
		if _, ok := r.Get(id); ok {
			s.state = State{View: ViewDetail, ActiveID: id}
			s.syncLocation()
			return s.state
		}
	}
	return s.toList()
}

// Save returns to the list after a create or an update.
func (s *Synchronizer) Save() State {
	return s.toList()
}

// Back returns from the detail view to the list.
func (s *Synchronizer) Back() State {
	return s.toList()
}

// Resolve returns the active review, if any, from c. A detail view with an
// id that does not resolve is a valid "not found" state.
func (s *Synchronizer) Resolve(c Resolver) (models.Review, bool) {
	if s.state.ActiveID == "" || c == nil {
		return models.Review{}, false
	}
	return c.Get(s.state.ActiveID)
}

func (s *Synchronizer) toList() State {
	s.state = State{View: ViewList}
	s.syncLocation()
	return s.state
}

// syncLocation pushes a history entry when the location does not already
// encode the current state's item reference.
func (s *Synchronizer) syncLocation() {
	want := ""
	if s.state.View == ViewDetail {
		want = s.state.ActiveID
	}
	if FromSearch(s.loc.Search()).ActiveID != want {
		s.loc.Push(SearchFor(want))
	}
}
