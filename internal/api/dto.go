package api

import (
	"github.com/royfox/little-reviews/internal/index"
	"github.com/royfox/little-reviews/internal/reviewservice"
)

// ReviewListResponse is the body of GET /api/reviews.
type ReviewListResponse = reviewservice.ListResult

// ReviewDetail is the body of GET /api/reviews/{id}.
type ReviewDetail = reviewservice.Detail

// ViewResponse is the body of GET /api/view.
type ViewResponse = reviewservice.ViewResult

// DraftRequest is the body of POST /api/drafts.
type DraftRequest = reviewservice.DraftRequest

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results"`
}
