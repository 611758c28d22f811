package inbound

import (
	"context"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// Outcome names how an AI answer was obtained.
type Outcome string

const (
	OutcomeOk       Outcome = "ok"
	OutcomeFallback Outcome = "fallback"
)

// AIService defines the model-backed use cases
type AIService interface {
	// Regenerate previews the recipe with the change set applied. Nothing is stored.
	Regenerate(ctx context.Context, recipeID string, cs changeset.ChangeSet) (*AIRecipeResult, error)
	// Generate drafts a new recipe from an idea. Nothing is stored.
	Generate(ctx context.Context, req GenerateRecipeRequest) (*AIRecipeResult, error)
	// AddWithAI generates, illustrates and stores a new recipe.
	AddWithAI(ctx context.Context, req GenerateRecipeRequest) (*recipe.Recipe, error)
	EstimateMacros(ctx context.Context, req EstimateMacrosRequest) (*recipe.MacroInformation, error)
	ConvertIngredients(ctx context.Context, req ConvertIngredientsRequest) (*ConversionResult, error)
}

// AIRecipeResult is a recipe produced by the model, with how it was reached
type AIRecipeResult struct {
	Recipe   *recipe.Recipe `json:"recipe"`
	Outcome  Outcome        `json:"outcome"`
	Warnings []string       `json:"warnings,omitempty"`
}

// RegenerateRequest is the body of an ai-regenerate call
type RegenerateRequest struct {
	ChangeSet changeset.ChangeSet `json:"changeSet"`
}

// GenerateRecipeRequest asks for a brand new recipe
type GenerateRecipeRequest struct {
	Prompt     string   `json:"prompt" validate:"required,max=2000"`
	Cuisine    string   `json:"cuisine,omitempty" validate:"max=100"`
	Dietary    []string `json:"dietary,omitempty" validate:"dive,max=100"`
	Servings   int      `json:"servings,omitempty" validate:"gte=0,lte=50"`
	Location   string   `json:"location,omitempty" validate:"max=200"`
	ImageCount int      `json:"imageCount,omitempty" validate:"gte=0,lte=3"`
}

// EstimateMacrosRequest carries either a stored recipe id or a loose
// ingredient list.
type EstimateMacrosRequest struct {
	RecipeID    string              `json:"recipeId,omitempty"`
	Title       string              `json:"title,omitempty"`
	Ingredients []recipe.Ingredient `json:"ingredients,omitempty" validate:"required_without=RecipeID,dive"`
	Servings    int                 `json:"servings,omitempty" validate:"gte=0"`
}

// ConvertIngredientsRequest asks for purchasable units
type ConvertIngredientsRequest struct {
	Ingredients    []recipe.Ingredient `json:"ingredients" validate:"required,min=1,dive"`
	SourceRecipeID string              `json:"sourceRecipeId,omitempty"`
}

// ConversionResult is the converted list. Warning is set when the model
// could not be used and the items mirror the original ingredients.
type ConversionResult struct {
	Items   []grocery.Item `json:"items"`
	Warning string         `json:"warning,omitempty"`
}
