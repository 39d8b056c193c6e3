// Package reviewservice answers read-only catalogue questions for the HTTP
// API and the MCP server.
package reviewservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/royfox/little-reviews/internal/apperr"
	"github.com/royfox/little-reviews/internal/authoring"
	"github.com/royfox/little-reviews/internal/catalog"
	"github.com/royfox/little-reviews/internal/index"
	"github.com/royfox/little-reviews/internal/models"
	"github.com/royfox/little-reviews/internal/navigation"
	"github.com/royfox/little-reviews/internal/query"
	"github.com/royfox/little-reviews/internal/render"
)

// ListItem is one row in a list response.
type ListItem struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Author      string           `json:"author,omitempty"`
	Type        models.MediaType `json:"type"`
	Icon        string           `json:"icon"`
	Rating      float64          `json:"rating"`
	ReleaseYear int              `json:"releaseYear"`
	ReviewDate  time.Time        `json:"reviewDate"`
	Excerpt     string           `json:"excerpt"`
}

// ListResult is a filtered, sorted page of the catalogue.
type ListResult struct {
	Items  []ListItem               `json:"items"`
	Total  int                      `json:"total"`
	Counts map[models.MediaType]int `json:"counts"`
	Query  query.State              `json:"query"`
}

// Detail is the full representation of one review.
type Detail struct {
	models.Review
	AuthorLabel string `json:"authorLabel,omitempty"`
	Icon        string `json:"icon"`
	HTML        string `json:"html"`
}

// ViewResult is the navigation state a location string resolves to.
type ViewResult struct {
	navigation.State
	Found  bool    `json:"found"`
	Review *Detail `json:"review,omitempty"`
}

// DraftRequest asks for an authoring output. ID selects an existing review
// to edit; empty means a new review.
type DraftRequest struct {
	ID string `json:"id,omitempty"`
	authoring.Draft
}

// Sessions holds the current catalogue session. Serve swaps in a new one
// after every rebuild.
type Sessions struct {
	cur atomic.Pointer[catalog.Session]
}

// NewSessions starts with s, or a Loading session when s is nil.
func NewSessions(s *catalog.Session) *Sessions {
	h := &Sessions{}
	if s == nil {
		s = &catalog.Session{Status: catalog.Loading}
	}
	h.cur.Store(s)
	return h
}

// Current returns the active session.
func (h *Sessions) Current() *catalog.Session { return h.cur.Load() }

// Set replaces the active session.
func (h *Sessions) Set(s *catalog.Session) { h.cur.Store(s) }

// Service coordinates the loaded catalogue, the query engine and the
// search index.
type Service struct {
	sessions *Sessions
	idx      index.ReviewIndex
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIndex enables full-text body search.
func WithIndex(idx index.ReviewIndex) Option {
	return func(s *Service) { s.idx = idx }
}

// WithClock overrides time.Now for drafts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a service reading from sessions.
func NewService(sessions *Sessions, opts ...Option) *Service {
	s := &Service{sessions: sessions, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the load status of the current session.
func (s *Service) Status() catalog.Status {
	return s.sessions.Current().Status
}

// List applies st to the catalogue.
func (s *Service) List(_ context.Context, st query.State) (*ListResult, error) {
	records, err := s.sessions.Current().Records()
	if err != nil {
		return nil, err
	}
	out := query.Apply(records, st)
	items := make([]ListItem, len(out))
	for i, r := range out {
		items[i] = ListItem{
			ID:          r.ID,
			Title:       r.Title,
			Author:      r.Author,
			Type:        r.Type,
			Icon:        r.Type.Icon(),
			Rating:      r.Rating,
			ReleaseYear: r.ReleaseYear,
			ReviewDate:  r.ReviewDate,
			Excerpt:     render.Excerpt(r.Text, render.ExcerptWords),
		}
	}
	return &ListResult{
		Items:  items,
		Total:  len(items),
		Counts: query.Counts(records),
		Query:  st,
	}, nil
}

// Get returns one review with its body rendered to HTML.
func (s *Service) Get(_ context.Context, id string) (*Detail, error) {
	r, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return detail(r)
}

// View resolves a location string the way the browser would on load.
func (s *Service) View(ctx context.Context, search string) (*ViewResult, error) {
	nav := navigation.New(navigation.NewMemoryLocation(search))
	res := &ViewResult{State: nav.Init()}
	if res.View != navigation.ViewDetail {
		return res, nil
	}
	d, err := s.Get(ctx, res.ActiveID)
	switch {
	case err == nil:
		res.Found = true
		res.Review = d
	case errors.Is(err, apperr.ErrNotFound):
	default:
		return nil, err
	}
	return res, nil
}

// Search looks for q in titles, authors and bodies. Without an index it
// scans the loaded catalogue.
func (s *Service) Search(_ context.Context, q string, limit int) ([]index.SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if s.idx != nil {
		return s.idx.Search(q, limit)
	}
	records, err := s.sessions.Current().Records()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(q)
	out := []index.SearchResult{}
	for _, r := range records {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(r.Title), needle) ||
			strings.Contains(strings.ToLower(r.Author), needle) ||
			strings.Contains(strings.ToLower(r.Text), needle) {
			out = append(out, index.SearchResult{ID: r.ID, Title: r.Title, Snippet: render.Excerpt(r.Text, 30)})
		}
	}
	return out, nil
}

// Draft produces the downloadable record for a new or edited review.
// Nothing is written to the record store.
func (s *Service) Draft(_ context.Context, req DraftRequest) (*authoring.Output, error) {
	now := s.now()
	if req.ID == "" {
		out, err := authoring.NewRecord(req.Draft, now)
		if err != nil {
			return nil, err
		}
		return &out, nil
	}
	existing, err := s.lookup(req.ID)
	if err != nil {
		return nil, err
	}
	out, err := authoring.UpdateRecord(existing, req.Draft, now)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) lookup(id string) (models.Review, error) {
	sess := s.sessions.Current()
	if sess.Status != catalog.Ready {
		return models.Review{}, apperr.ErrUnavailable
	}
	r, ok := sess.Collection.Get(id)
	if !ok {
		return models.Review{}, apperr.ErrNotFound
	}
	return r, nil
}

func detail(r models.Review) (*Detail, error) {
	html, err := render.HTML(r.Text)
	if err != nil {
		return nil, fmt.Errorf("reviewservice: %w", err)
	}
	return &Detail{
		Review:      r,
		AuthorLabel: r.Type.AuthorLabel(),
		Icon:        r.Type.Icon(),
		HTML:        html,
	}, nil
}
