package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func sampleRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		ID:          "65f1c2a9b3e4d5f6a7b8c9d0",
		Title:       "Crème brûlée",
		Description: "Baked custard with a burnt sugar top",
		Ingredients: []recipe.Ingredient{
			{ID: "a", Quantity: 500, Unit: "ml", Name: "double cream"},
			{ID: "b", Quantity: 5, Name: "egg yolks"},
			{ID: "c", Quantity: 0, Name: "salt", Note: "a pinch"},
		},
		Steps:           []string{"Heat the cream.", "Whisk in the yolks.", "Bake, chill, then torch the sugar."},
		PrepTimeMinutes: recipe.IntPtr(20),
		CookTimeMinutes: recipe.IntPtr(40),
		Servings:        recipe.IntPtr(4),
		Tags:            []string{"dessert", "french"},
		Nutrition: &recipe.MacroInformation{
			Calories: 420,
			Protein:  recipe.FloatPtr(6.5),
			Fat:      recipe.FloatPtr(38),
		},
	}
}

func TestShareQR(t *testing.T) {
	png, err := ShareQR("https://cookbook.example/recipes/65f1c2a9b3e4d5f6a7b8c9d0", 128)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))

	png, err = ShareQR("https://cookbook.example", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngSignature))
}

func TestRecipeCardPDF(t *testing.T) {
	t.Run("with share code", func(t *testing.T) {
		doc, err := RecipeCardPDF(sampleRecipe(), "https://cookbook.example/recipes/65f1c2a9b3e4d5f6a7b8c9d0")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
	})

	t.Run("minimal recipe", func(t *testing.T) {
		doc, err := RecipeCardPDF(&recipe.Recipe{
			Title:       "Toast",
			Ingredients: []recipe.Ingredient{{Quantity: 1, Name: "bread"}},
		}, "")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
	})

	t.Run("long method spills onto a second page", func(t *testing.T) {
		r := sampleRecipe()
		r.Steps = nil
		for i := 0; i < 80; i++ {
			r.Steps = append(r.Steps, strings.Repeat("Stir gently and keep watching the pan. ", 3))
		}
		doc, err := RecipeCardPDF(r, "")
		require.NoError(t, err)
		assert.Regexp(t, `/Count [2-9]`, string(doc))
	})
}

func TestGroceryListPDF(t *testing.T) {
	items := []*grocery.Item{
		{ID: "1", IngredientName: "milk", Quantity: 1, Unit: "l", Category: grocery.CategoryDairy},
		{ID: "2", IngredientName: "onion", Quantity: 3, Category: grocery.CategoryProduce, Purchased: true},
		{ID: "3", IngredientName: "mystery", Quantity: 1, Category: "aisle 9", PackageDescription: "1 jar"},
	}

	doc, err := GroceryListPDF(items)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))

	empty, err := GroceryListPDF(nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(empty, []byte("%PDF-")))
}

func TestLineFormatting(t *testing.T) {
	assert.Equal(t, "1.5 kg flour (1 bag)", groceryLine(&grocery.Item{
		IngredientName: "flour", Quantity: 1.5, Unit: "kg", PackageDescription: "1 bag",
	}))
	assert.Equal(t, "2 lemons", groceryLine(&grocery.Item{IngredientName: "lemons", Quantity: 2}))
	assert.Equal(t, "3 cloves garlic", groceryLine(&grocery.Item{IngredientName: "garlic", Quantity: 3, Unit: " cloves "}))
	assert.Equal(t, "Produce", categoryTitle(grocery.CategoryProduce))
	assert.Equal(t, "420 kcal, protein 6.5g, fat 38g", macroLine(sampleRecipe().Nutrition))
	assert.Equal(t, "Prep 20 min  |  Cook 40 min  |  Serves 4  |  dessert, french", recipeFacts(sampleRecipe()))
}
