package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/royfox/little-reviews/internal/reviewservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *reviewservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/reviews", h.ListReviews)
	r.Get("/reviews/{id}", h.GetReview)
	r.Get("/search", h.Search)
	r.Get("/view", h.View)
	r.Post("/drafts", h.CreateDraft)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
