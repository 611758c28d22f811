// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases the HTTP layer drives
package inbound

import (
	"context"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// RecipeService defines the recipe CRUD use cases
type RecipeService interface {
	List(ctx context.Context, query ListRecipesQuery) (*RecipeListDTO, error)
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
	Create(ctx context.Context, input RecipeInput) (*recipe.Recipe, error)
	Update(ctx context.Context, id string, input RecipeInput) (*recipe.Recipe, error)
	Delete(ctx context.Context, id string) error
	Tags(ctx context.Context) ([]outbound.TagCount, error)
}

// ListRecipesQuery represents a recipe list request
type ListRecipesQuery struct {
	Search string `validate:"max=200"`
	Tag    string `validate:"max=100"`
	Page   int    `validate:"gte=0"`
	Limit  int    `validate:"gte=0,lte=100"`
}

// RecipeListDTO is one page of recipes
type RecipeListDTO struct {
	Recipes []*recipe.Recipe `json:"recipes"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}

// IngredientInput is an ingredient as sent by clients
type IngredientInput struct {
	ID       string  `json:"id,omitempty"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"max=50"`
	Name     string  `json:"name" validate:"required,max=200"`
	Note     string  `json:"note,omitempty" validate:"max=500"`
	Tooltip  string  `json:"tooltip,omitempty" validate:"max=500"`
}

// RecipeInput is the body of create and replace requests
type RecipeInput struct {
	Title           string                   `json:"title" validate:"required,max=200"`
	Description     string                   `json:"description" validate:"max=5000"`
	Ingredients     []IngredientInput        `json:"ingredients" validate:"dive"`
	Steps           []string                 `json:"steps" validate:"dive,max=5000"`
	PrepTimeMinutes *int                     `json:"prepTimeMinutes,omitempty" validate:"omitempty,gte=0"`
	CookTimeMinutes *int                     `json:"cookTimeMinutes,omitempty" validate:"omitempty,gte=0"`
	Servings        *int                     `json:"servings,omitempty" validate:"omitempty,gte=0"`
	Tags            []string                 `json:"tags,omitempty" validate:"dive,max=100"`
	Nutrition       *recipe.MacroInformation `json:"nutrition,omitempty"`
	Images          []recipe.RecipeImage     `json:"images,omitempty"`
}

// ToRecipe maps the input onto a new domain recipe.
func (in RecipeInput) ToRecipe() *recipe.Recipe {
	r := &recipe.Recipe{
		Title:           in.Title,
		Description:     in.Description,
		Steps:           append([]string{}, in.Steps...),
		PrepTimeMinutes: in.PrepTimeMinutes,
		CookTimeMinutes: in.CookTimeMinutes,
		Servings:        in.Servings,
		Tags:            append([]string{}, in.Tags...),
		Nutrition:       in.Nutrition,
		Images:          append([]recipe.RecipeImage{}, in.Images...),
	}
	r.Ingredients = make([]recipe.Ingredient, 0, len(in.Ingredients))
	for _, ing := range in.Ingredients {
		r.Ingredients = append(r.Ingredients, recipe.Ingredient{
			ID:       ing.ID,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Name:     ing.Name,
			Note:     ing.Note,
			Tooltip:  ing.Tooltip,
		})
	}
	return r
}

// RecipeInputFrom is the inverse of ToRecipe.
func RecipeInputFrom(r *recipe.Recipe) RecipeInput {
	in := RecipeInput{
		Title:           r.Title,
		Description:     r.Description,
		Steps:           r.Steps,
		PrepTimeMinutes: r.PrepTimeMinutes,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Tags:            r.Tags,
		Nutrition:       r.Nutrition,
		Images:          r.Images,
	}
	for _, ing := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, IngredientInput{
			ID:       ing.ID,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
			Name:     ing.Name,
			Note:     ing.Note,
			Tooltip:  ing.Tooltip,
		})
	}
	return in
}
