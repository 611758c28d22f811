package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
)

func promptRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		Title: "Chickpea Curry",
		Ingredients: []recipe.Ingredient{
			{ID: "a1", Quantity: 1, Unit: "can", Name: "chickpeas", Note: "drained"},
			{ID: "b2", Quantity: 400, Unit: "ml", Name: "coconut milk"},
			{ID: "c3", Quantity: 0, Unit: "", Name: "salt"},
		},
		Steps:    []string{"Simmer everything for 20 minutes."},
		Servings: recipe.IntPtr(4),
	}
}

func TestBuildRegenerationPrompt(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		cs := &changeset.ChangeSet{
			Deletions:   []string{"c3"},
			Macros:      changeset.MacroIntent{Protein: changeset.Adjustment{Direction: changeset.DirectionUp, Magnitude: 2}},
			PantryItems: []string{"spinach"},
		}
		sys1, user1 := BuildRegenerationPrompt(promptRecipe(), cs)
		sys2, user2 := BuildRegenerationPrompt(promptRecipe(), cs)

		assert.Equal(t, sys1, sys2)
		assert.Equal(t, user1, user2)
		assert.Equal(t, RegenerationSystemPrompt, sys1)
	})

	t.Run("AddressesIngredientsByID", func(t *testing.T) {
		cs := &changeset.ChangeSet{
			Deletions:     []string{"c3"},
			Substitutions: []changeset.Substitution{{IngredientID: "b2", Replacement: "cream"}},
		}
		_, user := BuildRegenerationPrompt(promptRecipe(), cs)

		assert.Contains(t, user, "- [a1] 1 can chickpeas (drained)")
		assert.Contains(t, user, "- [c3] salt to taste")
		assert.Contains(t, user, "Delete:\n- [c3] salt\n")
		assert.Contains(t, user, "Substitute:\n- [b2] coconut milk -> cream\n")
	})

	t.Run("MarksLockedIngredients", func(t *testing.T) {
		cs := &changeset.ChangeSet{
			LockedIngredientIDs: []string{"a1"},
			Deletions:           []string{"a1"},
		}
		_, user := BuildRegenerationPrompt(promptRecipe(), cs)

		assert.Contains(t, user, "- [a1] 1 can chickpeas (drained) LOCKED - do not change")
		assert.Contains(t, user, "- [a1] chickpeas (ignored, ingredient is LOCKED)")
	})

	t.Run("EmptyChangeSet", func(t *testing.T) {
		_, user := BuildRegenerationPrompt(promptRecipe(), &changeset.ChangeSet{})

		assert.Contains(t, user, "- None.")
	})

	t.Run("LetModelChoose", func(t *testing.T) {
		cs := &changeset.ChangeSet{
			Substitutions: []changeset.Substitution{{IngredientID: "b2", LetModelChoose: true}},
		}
		_, user := BuildRegenerationPrompt(promptRecipe(), cs)

		assert.Contains(t, user, "coconut milk -> a suitable replacement of your choice")
	})

	t.Run("ConstraintsWithLocation", func(t *testing.T) {
		cs := &changeset.ChangeSet{
			Constraints: changeset.Constraints{PreferLocal: true, AvoidSpecialty: true},
			Location:    "Lisbon",
		}
		_, user := BuildRegenerationPrompt(promptRecipe(), cs)

		assert.Contains(t, user, "- Prefer ingredients that are locally available in Lisbon\n")
		assert.Contains(t, user, "- Avoid specialty ingredients that are hard to find\n")
	})
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "1.5", FormatQuantity(1.5))
	assert.Equal(t, "200", FormatQuantity(200))
	assert.Equal(t, "0.25", FormatQuantity(0.25))
}

func TestBuildGenerationPrompt(t *testing.T) {
	system, user := BuildGenerationPrompt(inbound.GenerateRecipeRequest{
		Prompt:   "  smoky bean stew ",
		Cuisine:  "Mexican",
		Dietary:  []string{"vegan", "gluten-free"},
		Servings: 6,
	})

	assert.Equal(t, GenerationSystemPrompt, system)
	assert.Contains(t, user, "Create a recipe for: smoky bean stew\n")
	assert.Contains(t, user, "Dietary requirements: vegan, gluten-free\n")
	assert.Contains(t, user, "Servings: 6\n")
}

func TestBuildConversionPrompt(t *testing.T) {
	system, user := BuildConversionPrompt(promptRecipe().Ingredients)

	assert.Equal(t, ConversionSystemPrompt, system)
	assert.Contains(t, user, "- 400 ml coconut milk\n")
}

func TestConversionSystemPrompt_ListsEveryCategory(t *testing.T) {
	names := make([]string, len(grocery.Categories))
	for i, c := range grocery.Categories {
		names[i] = string(c)
	}

	assert.Equal(t, strings.Join(names, ", "), categoryList)
	assert.Contains(t, ConversionSystemPrompt, "Choose category from: "+categoryList+".")
}
