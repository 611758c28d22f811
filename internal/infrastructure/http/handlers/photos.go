package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/infrastructure/security"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
)

// PhotoHandlers proxies the stock photo provider
type PhotoHandlers struct {
	base
	images inbound.ImageService
}

// NewPhotoHandlers creates photo handlers
func NewPhotoHandlers(images inbound.ImageService, validator *security.ValidationService, logger *zap.Logger) *PhotoHandlers {
	return &PhotoHandlers{
		base:   base{validator: validator, logger: logger.Named("photo-handlers")},
		images: images,
	}
}

// Search handles GET /api/unsplash/search
func (h *PhotoHandlers) Search(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	perPage, err := queryInt(r, "perPage")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	req := inbound.PhotoSearchRequest{
		Query:       security.NormalizeWhitespace(r.URL.Query().Get("query")),
		Page:        page,
		PerPage:     perPage,
		Orientation: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("orientation"))),
	}
	if err := h.validator.Validate(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.images.Search(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// TrackDownload handles POST /api/unsplash/download. The provider is
// pinged in the background.
func (h *PhotoHandlers) TrackDownload(w http.ResponseWriter, r *http.Request) {
	var req inbound.TrackDownloadRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.images.TrackDownload(req.DownloadLocation)
	h.writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
