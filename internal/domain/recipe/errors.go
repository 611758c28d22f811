package recipe

import "errors"

// MaxTitleLength bounds Recipe.Title.
const MaxTitleLength = 200

var (
	ErrTitleRequired          = errors.New("recipe title is required")
	ErrTitleTooLong           = errors.New("recipe title must not exceed 200 characters")
	ErrInvalidServings        = errors.New("servings cannot be negative")
	ErrInvalidDuration        = errors.New("prep and cook time cannot be negative")
	ErrIngredientNameRequired = errors.New("ingredient name is required")
	ErrNegativeQuantity       = errors.New("ingredient quantity cannot be negative")

	ErrRecipeNotFound = errors.New("recipe not found")
)
