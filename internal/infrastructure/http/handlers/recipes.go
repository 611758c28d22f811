package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/export"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/render"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// RecipeHandlers serves recipe CRUD and the printable exports
type RecipeHandlers struct {
	base
	recipes   inbound.RecipeService
	publicURL string
}

// NewRecipeHandlers creates recipe handlers. publicURL is the address
// share links point at.
func NewRecipeHandlers(
	recipes inbound.RecipeService,
	validator *security.ValidationService,
	publicURL string,
	logger *zap.Logger,
) *RecipeHandlers {
	return &RecipeHandlers{
		base:      base{validator: validator, logger: logger.Named("recipe-handlers")},
		recipes:   recipes,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// List handles GET /api/recipes
func (h *RecipeHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	query := inbound.ListRecipesQuery{
		Search: security.NormalizeWhitespace(r.URL.Query().Get("search")),
		Tag:    strings.TrimSpace(r.URL.Query().Get("tag")),
		Page:   page,
		Limit:  limit,
	}
	if err := h.validator.Validate(query); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.recipes.List(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Create handles POST /api/recipes
func (h *RecipeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var input inbound.RecipeInput
	if err := h.decode(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.recipes.Create(r.Context(), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// Tags handles GET /api/recipes/tags
func (h *RecipeHandlers) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.recipes.Tags(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tags)
}

// Get handles GET /api/recipes/{id}
func (h *RecipeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recipes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// Update handles PUT /api/recipes/{id}
func (h *RecipeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var input inbound.RecipeInput
	if err := h.decode(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.recipes.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/recipes/{id}
func (h *RecipeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.recipes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PDF handles GET /api/recipes/{id}/pdf
func (h *RecipeHandlers) PDF(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	doc, err := export.RecipeCardPDF(rec, h.shareURL(id))
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "Could not render the recipe card"))
		return
	}
	render.Bytes(w, h.logger, "application/pdf", slug(rec.Title)+".pdf", doc)
}

// QR handles GET /api/recipes/{id}/qr
func (h *RecipeHandlers) QR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	size, err := queryInt(r, "size")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	switch {
	case size <= 0:
		size = defaultQRSize
	case size > maxQRSize:
		size = maxQRSize
	}

	if _, err := h.recipes.Get(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	png, err := export.ShareQR(h.shareURL(id), size)
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "Could not render the share code"))
		return
	}
	render.Bytes(w, h.logger, "image/png", "", png)
}

func (h *RecipeHandlers) shareURL(id string) string {
	return h.publicURL + "/recipes/" + id
}

// slug turns a title into a file name
func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.TrimSuffix(b.String(), "-")
	if s == "" {
		return "recipe"
	}
	return s
}
