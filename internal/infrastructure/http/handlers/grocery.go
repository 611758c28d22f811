package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/export"
	"github.com/alchemorsel/cookbook/internal/infrastructure/http/render"
	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

// GroceryHandlers serves the shopping list
type GroceryHandlers struct {
	base
	grocery inbound.GroceryService
}

// NewGroceryHandlers creates grocery handlers
func NewGroceryHandlers(grocery inbound.GroceryService, validator *security.ValidationService, logger *zap.Logger) *GroceryHandlers {
	return &GroceryHandlers{
		base:    base{validator: validator, logger: logger.Named("grocery-handlers")},
		grocery: grocery,
	}
}

type itemsResponse struct {
	Items interface{} `json:"items"`
}

type clearResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *GroceryHandlers) listQuery(r *http.Request) (inbound.ListGroceryQuery, error) {
	purchased, err := queryBool(r, "purchased")
	if err != nil {
		return inbound.ListGroceryQuery{}, err
	}
	query := inbound.ListGroceryQuery{
		Purchased: purchased,
		Category:  strings.TrimSpace(r.URL.Query().Get("category")),
	}
	return query, h.validator.Validate(query)
}

// List handles GET /api/grocery
func (h *GroceryHandlers) List(w http.ResponseWriter, r *http.Request) {
	query, err := h.listQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items, err := h.grocery.List(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

// Add handles POST /api/grocery. The body is {"items": [...]}, a bare
// array, or a single item object.
func (h *GroceryHandlers) Add(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := readJSON(w, r, &raw); err != nil {
		h.writeError(w, r, err)
		return
	}

	req, err := parseAddRequest(raw)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.validator.Validate(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	items, err := h.grocery.Add(r.Context(), req.Items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, itemsResponse{Items: items})
}

func parseAddRequest(raw json.RawMessage) (*inbound.AddGroceryRequest, error) {
	trimmed := bytes.TrimSpace(raw)
	invalid := func(err error) error {
		return errors.NewBadRequestError("Request body is not a grocery item or list of items").WithCause(err)
	}

	req := &inbound.AddGroceryRequest{}
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		if err := json.Unmarshal(trimmed, &req.Items); err != nil {
			return nil, invalid(err)
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		var probe struct {
			Items json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, invalid(err)
		}
		if probe.Items != nil {
			if err := json.Unmarshal(probe.Items, &req.Items); err != nil {
				return nil, invalid(err)
			}
			break
		}
		var single inbound.GroceryItemInput
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, invalid(err)
		}
		req.Items = []inbound.GroceryItemInput{single}
	default:
		return nil, invalid(nil)
	}
	return req, nil
}

// Patch handles PATCH /api/grocery
func (h *GroceryHandlers) Patch(w http.ResponseWriter, r *http.Request) {
	var req inbound.PatchGroceryRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	item, err := h.grocery.Update(r.Context(), req.ID, req.Patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// Delete handles DELETE /api/grocery?id=. Without an id and with
// purchased=true it clears every purchased item.
func (h *GroceryHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		if err := h.grocery.Delete(r.Context(), id); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	purchased, err := queryBool(r, "purchased")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if purchased == nil || !*purchased {
		h.writeError(w, r, errors.NewBadRequestError("id is required unless purchased=true"))
		return
	}

	deleted, err := h.grocery.ClearPurchased(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, clearResponse{Deleted: deleted})
}

// Normalize handles POST /api/grocery/normalize
func (h *GroceryHandlers) Normalize(w http.ResponseWriter, r *http.Request) {
	var req inbound.NormalizeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.grocery.Normalize(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// PDF handles GET /api/grocery/pdf. The list filters apply.
func (h *GroceryHandlers) PDF(w http.ResponseWriter, r *http.Request) {
	query, err := h.listQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items, err := h.grocery.List(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	doc, err := export.GroceryListPDF(items)
	if err != nil {
		h.writeError(w, r, errors.Wrap(err, "Could not render the shopping list"))
		return
	}
	render.Bytes(w, h.logger, "application/pdf", "shopping-list.pdf", doc)
}
