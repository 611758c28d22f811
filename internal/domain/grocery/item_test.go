package grocery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeKey(t *testing.T) {
	assert.Equal(t, MergeKey("Olive Oil ", "ML"), MergeKey("olive oil", "ml"))
	assert.NotEqual(t, MergeKey("olive oil", "ml"), MergeKey("olive oil", "l"))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryDairy, NormalizeCategory(" Dairy"))
	assert.Equal(t, CategoryOther, NormalizeCategory("hardware"))
	assert.Equal(t, CategoryOther, NormalizeCategory(""))
}

func TestItemValidate(t *testing.T) {
	assert.ErrorIs(t, (&Item{IngredientName: " "}).Validate(), ErrNameRequired)
	assert.ErrorIs(t, (&Item{IngredientName: "milk", Quantity: -1}).Validate(), ErrNegativeQuantity)
	assert.NoError(t, (&Item{IngredientName: "milk", Quantity: 1}).Validate())
}

func TestPatchApply(t *testing.T) {
	qty := 3.0
	purchased := true
	cat := Category("FROZEN")
	item := &Item{IngredientName: "peas", Quantity: 1, Unit: "bag", Category: CategoryProduce}

	Patch{Quantity: &qty, Purchased: &purchased, Category: &cat}.Apply(item)

	assert.Equal(t, 3.0, item.Quantity)
	assert.True(t, item.Purchased)
	assert.Equal(t, CategoryFrozen, item.Category)
	assert.Equal(t, "bag", item.Unit)
	assert.True(t, Patch{}.IsEmpty())
}

func TestFilterMatches(t *testing.T) {
	no := false
	item := &Item{IngredientName: "milk", Category: CategoryDairy}

	assert.True(t, Filter{}.Matches(item))
	assert.True(t, Filter{Purchased: &no, Category: CategoryDairy}.Matches(item))
	assert.False(t, Filter{Category: CategoryMeat}.Matches(item))

	item.Purchased = true
	assert.False(t, Filter{Purchased: &no}.Matches(item))
}
