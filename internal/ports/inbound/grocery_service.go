package inbound

import (
	"context"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// GroceryService defines the shopping list use cases
type GroceryService interface {
	List(ctx context.Context, query ListGroceryQuery) ([]*grocery.Item, error)
	// Add merges or inserts each item in order. The call is not atomic
	// across items.
	Add(ctx context.Context, items []GroceryItemInput) ([]*grocery.Item, error)
	Update(ctx context.Context, id string, patch grocery.Patch) (*grocery.Item, error)
	Delete(ctx context.Context, id string) error
	ClearPurchased(ctx context.Context) (int64, error)
	Normalize(ctx context.Context, req NormalizeRequest) (*NormalizeResult, error)
}

// ListGroceryQuery filters the shopping list
type ListGroceryQuery struct {
	Purchased *bool
	Category  string `validate:"omitempty,grocery_category"`
}

// GroceryItemInput is one item to add
type GroceryItemInput struct {
	IngredientName     string  `json:"ingredientName" validate:"required,max=200"`
	Quantity           float64 `json:"quantity" validate:"gte=0"`
	Unit               string  `json:"unit" validate:"max=50"`
	PackageDescription string  `json:"packageDescription,omitempty" validate:"max=200"`
	Category           string  `json:"category,omitempty"`
	SourceRecipeID     string  `json:"sourceRecipeId,omitempty"`
}

// ToItem maps the input onto a domain item.
func (in GroceryItemInput) ToItem() *grocery.Item {
	item := &grocery.Item{
		IngredientName:     in.IngredientName,
		Quantity:           in.Quantity,
		Unit:               in.Unit,
		PackageDescription: in.PackageDescription,
		Category:           grocery.Category(in.Category),
		SourceRecipeID:     in.SourceRecipeID,
	}
	item.Normalize()
	return item
}

// AddGroceryRequest is the body of POST /api/grocery. A single item
// object is accepted as well.
type AddGroceryRequest struct {
	Items []GroceryItemInput `json:"items" validate:"required,min=1,dive"`
}

// PatchGroceryRequest is the body of PATCH /api/grocery
type PatchGroceryRequest struct {
	ID string `json:"id" validate:"required"`
	grocery.Patch
}

// NormalizeRequest converts recipe ingredients and adds them to the list
type NormalizeRequest struct {
	Ingredients    []recipe.Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	SourceRecipeID string              `json:"sourceRecipeId,omitempty"`
}

// NormalizeResult lists the stored items after the merge
type NormalizeResult struct {
	Items   []*grocery.Item `json:"items"`
	Warning string          `json:"warning,omitempty"`
}
