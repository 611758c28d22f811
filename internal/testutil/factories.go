// Package testutil provides seeded test data factories
package testutil

import (
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

var units = []string{"g", "kg", "ml", "l", "cup", "tbsp", "tsp", "piece", "clove", "pinch"}

var tags = []string{"dinner", "quick", "vegetarian", "dessert", "soup", "baking", "spicy", "weeknight"}

// Factory builds realistic domain values. The same seed always yields the
// same sequence of values.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a factory seeded with seed
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Ingredient returns an ingredient without an id
func (f *Factory) Ingredient() recipe.Ingredient {
	return recipe.Ingredient{
		Quantity: float64(f.faker.Number(1, 40)) / 4,
		Unit:     f.faker.RandomString(units),
		Name:     strings.ToLower(f.food()),
	}
}

// Recipe returns an unsaved recipe with the given number of ingredients
// and steps
func (f *Factory) Recipe(ingredients, steps int) *recipe.Recipe {
	r := &recipe.Recipe{
		Title:       f.faker.Dinner(),
		Description: f.faker.Sentence(12),
		Servings:    intPtr(f.faker.Number(1, 8)),
		Tags:        []string{f.faker.RandomString(tags)},
	}
	if f.faker.Bool() {
		r.PrepTimeMinutes = intPtr(f.faker.Number(5, 60))
		r.CookTimeMinutes = intPtr(f.faker.Number(0, 180))
	}
	for i := 0; i < ingredients; i++ {
		r.Ingredients = append(r.Ingredients, f.Ingredient())
	}
	for i := 0; i < steps; i++ {
		r.Steps = append(r.Steps, f.faker.Sentence(8))
	}
	return r
}

// GroceryItem returns an unsaved, unpurchased shopping list item
func (f *Factory) GroceryItem() *grocery.Item {
	return &grocery.Item{
		IngredientName: strings.ToLower(f.food()),
		Quantity:       float64(f.faker.Number(1, 12)),
		Unit:           f.faker.RandomString(units),
		Category:       grocery.Categories[f.faker.Number(0, len(grocery.Categories)-1)],
	}
}

func (f *Factory) food() string {
	if f.faker.Bool() {
		return f.faker.Vegetable()
	}
	return f.faker.Fruit()
}

func intPtr(v int) *int {
	return &v
}
