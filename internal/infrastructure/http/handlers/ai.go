package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
)

// AIHandlers serves the model-backed endpoints
type AIHandlers struct {
	base
	ai inbound.AIService
}

// NewAIHandlers creates AI handlers
func NewAIHandlers(ai inbound.AIService, validator *security.ValidationService, logger *zap.Logger) *AIHandlers {
	return &AIHandlers{
		base: base{validator: validator, logger: logger.Named("ai-handlers")},
		ai:   ai,
	}
}

// Regenerate handles POST /api/recipes/{id}/ai-regenerate
func (h *AIHandlers) Regenerate(w http.ResponseWriter, r *http.Request) {
	var req inbound.RegenerateRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.ai.Regenerate(r.Context(), chi.URLParam(r, "id"), req.ChangeSet)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Generate handles POST /api/recipes/generate. Nothing is stored.
func (h *AIHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	var req inbound.GenerateRecipeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.ai.Generate(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// AddWithAI handles POST /api/recipes/ai-add
func (h *AIHandlers) AddWithAI(w http.ResponseWriter, r *http.Request) {
	var req inbound.GenerateRecipeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.ai.AddWithAI(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

// EstimateMacros handles POST /api/estimate-macros
func (h *AIHandlers) EstimateMacros(w http.ResponseWriter, r *http.Request) {
	var req inbound.EstimateMacrosRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	macros, err := h.ai.EstimateMacros(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, macros)
}

// ConvertIngredients handles POST /api/convert-ingredients
func (h *AIHandlers) ConvertIngredients(w http.ResponseWriter, r *http.Request) {
	var req inbound.ConvertIngredientsRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.ai.ConvertIngredients(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
