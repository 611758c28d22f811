// Package draft models an unsaved recipe edit. A draft keeps a snapshot of
// the ingredients it started from so the edit can be reverted.
package draft

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft is an in-progress edit of a recipe.
type Draft struct {
	ID                  string               `json:"id"`
	RecipeID            string               `json:"recipeId,omitempty"`
	Recipe              *recipe.Recipe       `json:"recipe"`
	OriginalIngredients []recipe.Ingredient  `json:"originalIngredients"`
	ChangeSet           *changeset.ChangeSet `json:"changeSet,omitempty"`
	CreatedAt           time.Time            `json:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt"`
}

// New starts a draft from a stored recipe.
func New(r *recipe.Recipe, now time.Time) *Draft {
	working := r.Clone()
	return &Draft{
		ID:                  uuid.NewString(),
		RecipeID:            r.ID,
		Recipe:              working,
		OriginalIngredients: append([]recipe.Ingredient{}, r.Ingredients...),
		CreatedAt:           now.UTC(),
		UpdatedAt:           now.UTC(),
	}
}

// Revert puts the original ingredients back.
func (d *Draft) Revert(now time.Time) {
	d.Recipe.Ingredients = append([]recipe.Ingredient{}, d.OriginalIngredients...)
	d.ChangeSet = nil
	d.UpdatedAt = now.UTC()
}
