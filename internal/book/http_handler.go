package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bookshelf/internal/httpx"
	"bookshelf/internal/logging"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Search handles GET /search
// @Summary Search the local catalog
// @Tags books
// @Produce json
// @Param query query string true "Search text (min 2 characters)"
// @Param limit query int false "Page size (1-100, default 10)"
// @Param offset query int false "Offset"
// @Param sort query string false "title, author, published_date or rating"
// @Param order query string false "asc or desc"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	text := query.Get("query")
	if text == "" {
		text = query.Get("q")
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	page, err := h.service.Search(r.Context(), Query{
		Q:      text,
		Sort:   query.Get("sort"),
		Order:  query.Get("order"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		if errors.Is(err, ErrQueryTooShort) {
			httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Search query must be at least 2 characters", []httpx.ErrorDetail{
				{Field: "query", Message: "query must be at least 2 characters"},
			})
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("book search failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, page.Books, map[string]any{
		"total":       page.Total,
		"limit":       page.Limit,
		"offset":      page.Offset,
		"hasMore":     page.HasMore,
		"totalPages":  page.TotalPages,
		"currentPage": page.CurrentPage,
	})
}

// Get handles GET /books/{id}
// @Summary Get a local book
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Missing book id", nil)
		return
	}

	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("book_id", id).Msg("get book failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /books
// @Summary Create a local book
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateCommand true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	var cmd CreateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	if validationErrors := httpx.ValidateStruct(cmd); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	b, err := h.service.Create(r.Context(), userID, cmd)
	if err != nil {
		if errors.Is(err, ErrLimitReached) {
			httpx.JSONError(w, r, http.StatusForbidden, "LIMIT_REACHED", "Max number of books reached", nil)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("create book failed")
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}
	httpx.JSONSuccessCreated(w, r, b)
}
