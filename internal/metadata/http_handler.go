package metadata

import (
	"net/http"

	"bookshelf/internal/httpx"
)

type HTTPHandler struct {
	resolver *Resolver
}

func NewHTTPHandler(resolver *Resolver) *HTTPHandler {
	return &HTTPHandler{resolver: resolver}
}

// Get handles GET /metadata/{provider}/{identifier}
// @Summary Resolve book metadata
// @Description Fetch a book from a provider and normalize it. Failed lookups return default values.
// @Tags metadata
// @Produce json
// @Param provider path string true "openlibrary.org, googlebooks.com or local"
// @Param identifier path string true "ISBN, or book id for local"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /metadata/{provider}/{identifier} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	identifier := r.PathValue("identifier")
	if identifier == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Missing identifier", nil)
		return
	}

	httpx.JSONSuccess(w, r, h.resolver.Resolve(r.Context(), provider, identifier), map[string]any{
		"provider": provider,
	})
}
