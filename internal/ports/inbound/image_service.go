package inbound

import (
	"context"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// ImageService defines the stock photo use cases
type ImageService interface {
	Search(ctx context.Context, req PhotoSearchRequest) (*outbound.PhotoSearchResult, error)
	// TrackDownload pings the provider in the background and returns at once.
	TrackDownload(downloadLocation string)
	ImagesForRecipe(ctx context.Context, r *recipe.Recipe, count int) ([]recipe.RecipeImage, error)
}

// PhotoSearchRequest is a search from the UI
type PhotoSearchRequest struct {
	Query       string `validate:"required,max=200"`
	Page        int    `validate:"gte=0"`
	PerPage     int
	Orientation string `validate:"omitempty,oneof=landscape portrait squarish"`
}

// TrackDownloadRequest is the body of POST /api/unsplash/download
type TrackDownloadRequest struct {
	DownloadLocation string `json:"downloadLocation" validate:"required,url"`
}
