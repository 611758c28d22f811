package inbound

import (
	"context"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/draft"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// DraftService defines the unsaved-edit use cases
type DraftService interface {
	Start(ctx context.Context, recipeID string) (*draft.Draft, error)
	Get(ctx context.Context, id string) (*draft.Draft, error)
	Save(ctx context.Context, id string, input SaveDraftInput) (*draft.Draft, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*draft.Draft, error)
	Revert(ctx context.Context, id string) (*draft.Draft, error)
	// Commit writes the draft over its recipe and discards the draft.
	Commit(ctx context.Context, id string) (*recipe.Recipe, error)
}

// StartDraftRequest is the body of POST /api/drafts
type StartDraftRequest struct {
	RecipeID string `json:"recipeId" validate:"required"`
}

// SaveDraftInput replaces the working copy of a draft
type SaveDraftInput struct {
	Recipe    RecipeInput          `json:"recipe"`
	ChangeSet *changeset.ChangeSet `json:"changeSet,omitempty"`
}
