package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/royfox/little-reviews/internal/apperr"
	"github.com/royfox/little-reviews/internal/index"
	"github.com/royfox/little-reviews/internal/query"
	"github.com/royfox/little-reviews/internal/reviewservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *reviewservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *reviewservice.Service) *Handler {
	return &Handler{svc: svc}
}

// writeServiceError maps service errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var verrs validation.Errors
	switch {
	case errors.Is(err, apperr.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("catalogue unavailable"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for k, v := range verrs {
			fields[k] = v.Error()
		}
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid draft", Fields: fields})
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListReviews handles GET /api/reviews?type=&q=&sort=&dir=.
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.List(r.Context(), query.ParseState(r.URL.Query()))
	if err != nil {
		writeServiceError(w, "list reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetReview handles GET /api/reviews/{id}.
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get review", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search?q=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, "search", err)
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// View handles GET /api/view?review=<id>: the navigation state a shared
// link opens into.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.View(r.Context(), r.URL.RawQuery)
	if err != nil {
		writeServiceError(w, "view", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CreateDraft handles POST /api/drafts. The response is the record document
// as a YAML attachment; nothing is stored.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	out, err := h.svc.Draft(r.Context(), req)
	if err != nil {
		writeServiceError(w, "create draft", err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+out.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Content)
}
