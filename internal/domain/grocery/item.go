// Package grocery holds the shopping list model and its merge rule.
package grocery

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrNameRequired     = errors.New("grocery item name is required")
	ErrNegativeQuantity = errors.New("grocery item quantity cannot be negative")
	ErrItemNotFound     = errors.New("grocery item not found")
)

// Category is the closed set of store sections.
type Category string

const (
	CategoryProduce   Category = "produce"
	CategoryDairy     Category = "dairy"
	CategoryMeat      Category = "meat"
	CategorySeafood   Category = "seafood"
	CategoryBakery    Category = "bakery"
	CategoryPantry    Category = "pantry"
	CategoryFrozen    Category = "frozen"
	CategoryBeverages Category = "beverages"
	CategorySpices    Category = "spices"
	CategoryOther     Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryProduce, CategoryDairy, CategoryMeat, CategorySeafood, CategoryBakery,
	CategoryPantry, CategoryFrozen, CategoryBeverages, CategorySpices, CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NormalizeCategory lower-cases c and maps anything unknown to other.
func NormalizeCategory(c string) Category {
	cat := Category(strings.ToLower(strings.TrimSpace(c)))
	if cat.Valid() {
		return cat
	}
	return CategoryOther
}

// Item is one line of the shopping list.
type Item struct {
	ID                 string   `json:"id"`
	IngredientName     string   `json:"ingredientName"`
	Quantity           float64  `json:"quantity"`
	Unit               string   `json:"unit"`
	PackageDescription string   `json:"packageDescription,omitempty"`
	Category           Category `json:"category"`
	Purchased          bool     `json:"purchased"`
	SourceRecipeID     string   `json:"sourceRecipeId,omitempty"`
	CreatedAt          string   `json:"createdAt,omitempty"`
	UpdatedAt          string   `json:"updatedAt,omitempty"`
}

// Validate validates the item
func (i *Item) Validate() error {
	if strings.TrimSpace(i.IngredientName) == "" {
		return ErrNameRequired
	}
	if i.Quantity < 0 || math.IsNaN(i.Quantity) || math.IsInf(i.Quantity, 0) {
		return ErrNegativeQuantity
	}
	return nil
}

// Normalize trims text fields and fixes up the category.
func (i *Item) Normalize() {
	i.IngredientName = strings.TrimSpace(i.IngredientName)
	i.Unit = strings.TrimSpace(i.Unit)
	i.PackageDescription = strings.TrimSpace(i.PackageDescription)
	i.Category = NormalizeCategory(string(i.Category))
}

// Touch stamps UpdatedAt, and CreatedAt if it is still empty.
func (i *Item) Touch(now time.Time) {
	stamp := now.UTC().Format(time.RFC3339)
	if i.CreatedAt == "" {
		i.CreatedAt = stamp
	}
	i.UpdatedAt = stamp
}

// Key returns the merge key of the item.
func (i *Item) Key() Key {
	return MergeKey(i.IngredientName, i.Unit)
}

// Key identifies items that merge into one another.
type Key struct {
	Name string
	Unit string
}

// MergeKey builds the case-insensitive merge key for a name and unit.
func MergeKey(name, unit string) Key {
	return Key{
		Name: strings.ToLower(strings.TrimSpace(name)),
		Unit: strings.ToLower(strings.TrimSpace(unit)),
	}
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Quantity           *float64  `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Unit               *string   `json:"unit,omitempty"`
	Purchased          *bool     `json:"purchased,omitempty"`
	Category           *Category `json:"category,omitempty"`
	PackageDescription *string   `json:"packageDescription,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Quantity == nil && p.Unit == nil && p.Purchased == nil && p.Category == nil && p.PackageDescription == nil
}

// Apply applies the patch to the item.
func (p Patch) Apply(i *Item) {
	if p.Quantity != nil {
		i.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		i.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Purchased != nil {
		i.Purchased = *p.Purchased
	}
	if p.Category != nil {
		i.Category = NormalizeCategory(string(*p.Category))
	}
	if p.PackageDescription != nil {
		i.PackageDescription = strings.TrimSpace(*p.PackageDescription)
	}
}

// Filter narrows a list query.
type Filter struct {
	Purchased *bool
	Category  Category
}

// Matches reports whether the item passes the filter.
func (f Filter) Matches(i *Item) bool {
	if f.Purchased != nil && i.Purchased != *f.Purchased {
		return false
	}
	if f.Category != "" && i.Category != f.Category {
		return false
	}
	return true
}
