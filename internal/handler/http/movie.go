package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AdrielSA/backend-test/internal/domain"
	"github.com/AdrielSA/backend-test/internal/service"
	apperrors "github.com/AdrielSA/backend-test/pkg/errors"
	"github.com/AdrielSA/backend-test/pkg/httputil"
	"github.com/AdrielSA/backend-test/pkg/pagination"
)

// MovieHandler handles HTTP requests for movie endpoints.
type MovieHandler struct {
	service *service.MovieService
	logger  *slog.Logger
}

// NewMovieHandler creates a new movie HTTP handler.
func NewMovieHandler(svc *service.MovieService, logger *slog.Logger) *MovieHandler {
	return &MovieHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateMovie handles POST /api/v1/movies
func (h *MovieHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var input service.CreateMovieInput
	if err := decodeJSON(w, r, &input); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	movie, err := h.service.CreateMovie(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/api/v1/movies/"+movie.ID)
	httputil.WriteData(w, http.StatusCreated, movie)
}

// ListMovies handles GET /api/v1/movies
//
// Query parameters: search, sortBy (Title|Year|Rating|CreatedAt),
// isDescending, pageNumber, pageSize.
func (h *MovieHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	criteria, err := criteriaFromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := h.service.ListMovies(r.Context(), criteria)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, page)
}

// GetMovie handles GET /api/v1/movies/{id}
func (h *MovieHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	movie, err := h.service.GetMovie(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, movie)
}

// GetMovieDetails handles GET /api/v1/movies/{id}/details
func (h *MovieHandler) GetMovieDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	detail, err := h.service.GetMovieWithReviews(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, detail)
}

// DisableMovie handles PATCH /api/v1/movies/{id}/disable
func (h *MovieHandler) DisableMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DisableMovie(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// criteriaFromRequest parses listing criteria from the query string. Search
// is kept verbatim. Range checks happen in the service.
func criteriaFromRequest(r *http.Request) (domain.FilterCriteria, error) {
	q := r.URL.Query()
	c := domain.DefaultFilterCriteria()
	c.Search = q.Get("search")

	sortBy, err := domain.ParseSortBy(q.Get("sortBy"))
	if err != nil {
		return c, apperrors.InvalidInput(err.Error())
	}
	c.SortBy = sortBy

	if raw := q.Get("isDescending"); raw != "" {
		desc, err := strconv.ParseBool(raw)
		if err != nil {
			return c, apperrors.InvalidInput("isDescending must be true or false")
		}
		c.IsDescending = desc
	}

	params, err := pagination.FromRequest(r)
	if err != nil {
		return c, err
	}
	c.Params = params

	return c, nil
}
