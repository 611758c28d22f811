package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
)

// DraftHandlers serves unsaved recipe edits
type DraftHandlers struct {
	base
	drafts inbound.DraftService
}

// NewDraftHandlers creates draft handlers
func NewDraftHandlers(drafts inbound.DraftService, validator *security.ValidationService, logger *zap.Logger) *DraftHandlers {
	return &DraftHandlers{
		base:   base{validator: validator, logger: logger.Named("draft-handlers")},
		drafts: drafts,
	}
}

// List handles GET /api/drafts
func (h *DraftHandlers) List(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.drafts.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, drafts)
}

// Start handles POST /api/drafts
func (h *DraftHandlers) Start(w http.ResponseWriter, r *http.Request) {
	var req inbound.StartDraftRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	d, err := h.drafts.Start(r.Context(), req.RecipeID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, d)
}

// Get handles GET /api/drafts/{id}
func (h *DraftHandlers) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// Save handles PUT /api/drafts/{id}
func (h *DraftHandlers) Save(w http.ResponseWriter, r *http.Request) {
	var input inbound.SaveDraftInput
	if err := h.decode(w, r, &input); err != nil {
		h.writeError(w, r, err)
		return
	}

	d, err := h.drafts.Save(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// Delete handles DELETE /api/drafts/{id}
func (h *DraftHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Revert handles POST /api/drafts/{id}/revert
func (h *DraftHandlers) Revert(w http.ResponseWriter, r *http.Request) {
	d, err := h.drafts.Revert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, d)
}

// Commit handles POST /api/drafts/{id}/commit
func (h *DraftHandlers) Commit(w http.ResponseWriter, r *http.Request) {
	rec, err := h.drafts.Commit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}
