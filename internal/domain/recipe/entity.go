// Package recipe contains the recipe aggregate and its value objects.
package recipe

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the ISO-8601 layout used for CreatedAt/UpdatedAt.
const TimestampLayout = time.RFC3339

// Recipe is the aggregate root. Saves replace the whole document, so the
// last writer wins.
type Recipe struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Ingredients     []Ingredient      `json:"ingredients"`
	Steps           []string          `json:"steps"`
	PrepTimeMinutes *int              `json:"prepTimeMinutes,omitempty"`
	CookTimeMinutes *int              `json:"cookTimeMinutes,omitempty"`
	Servings        *int              `json:"servings,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	Nutrition       *MacroInformation `json:"nutrition,omitempty"`
	Images          []RecipeImage     `json:"images,omitempty"`
	CreatedAt       string            `json:"createdAt,omitempty"`
	UpdatedAt       string            `json:"updatedAt,omitempty"`
}

// Validate checks the invariants every stored recipe must hold.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrTitleRequired
	}
	if len(r.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if r.Servings != nil && *r.Servings < 0 {
		return ErrInvalidServings
	}
	if r.PrepTimeMinutes != nil && *r.PrepTimeMinutes < 0 {
		return ErrInvalidDuration
	}
	if r.CookTimeMinutes != nil && *r.CookTimeMinutes < 0 {
		return ErrInvalidDuration
	}
	for _, ing := range r.Ingredients {
		if err := ing.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EnsureIngredientIDs gives every ingredient without an id a fresh one.
// Ids that are already set are never changed.
func (r *Recipe) EnsureIngredientIDs() {
	for i := range r.Ingredients {
		if r.Ingredients[i].ID == "" {
			r.Ingredients[i].ID = uuid.NewString()
		}
	}
}

// IngredientByID returns the ingredient with the given id and its position.
func (r *Recipe) IngredientByID(id string) (Ingredient, int, bool) {
	for i, ing := range r.Ingredients {
		if ing.ID == id {
			return ing, i, true
		}
	}
	return Ingredient{}, -1, false
}

// ServingsOrDefault returns the serving count, at least 1.
func (r *Recipe) ServingsOrDefault() int {
	if r.Servings == nil || *r.Servings < 1 {
		return 1
	}
	return *r.Servings
}

// Touch stamps UpdatedAt, and CreatedAt if it is still empty.
func (r *Recipe) Touch(now time.Time) {
	stamp := now.UTC().Format(TimestampLayout)
	if r.CreatedAt == "" {
		r.CreatedAt = stamp
	}
	r.UpdatedAt = stamp
}

// Clone returns a deep copy.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	out := *r
	// Ingredients and steps always serialize as arrays.
	out.Ingredients = append([]Ingredient{}, r.Ingredients...)
	out.Steps = append([]string{}, r.Steps...)
	out.Tags = slices.Clone(r.Tags)
	out.Images = slices.Clone(r.Images)
	out.PrepTimeMinutes = cloneInt(r.PrepTimeMinutes)
	out.CookTimeMinutes = cloneInt(r.CookTimeMinutes)
	out.Servings = cloneInt(r.Servings)
	if r.Nutrition != nil {
		n := r.Nutrition.Clone()
		out.Nutrition = &n
	}
	return &out
}

// IntPtr is a small helper for the optional integer fields.
func IntPtr(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
