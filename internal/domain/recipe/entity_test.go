package recipe

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RecipeTestSuite covers the Recipe aggregate
type RecipeTestSuite struct {
	suite.Suite
}

func (suite *RecipeTestSuite) validRecipe() *Recipe {
	return &Recipe{
		Title:       "Spaghetti Carbonara",
		Description: "A classic Italian pasta dish",
		Ingredients: []Ingredient{
			{Quantity: 200, Unit: "g", Name: "spaghetti"},
			{Quantity: 2, Unit: "", Name: "eggs"},
			{Quantity: 0, Unit: "", Name: "black pepper", Note: "freshly ground"},
		},
		Steps:    []string{"Boil pasta", "Mix eggs and cheese", "Combine"},
		Servings: IntPtr(2),
		Tags:     []string{"italian", "pasta"},
	}
}

func (suite *RecipeTestSuite) TestValidate() {
	suite.Run("ValidRecipe_ShouldPass", func() {
		// Arrange
		r := suite.validRecipe()

		// Act
		err := r.Validate()

		// Assert
		assert.NoError(suite.T(), err)
	})

	suite.Run("BlankTitle_ShouldFail", func() {
		r := suite.validRecipe()
		r.Title = "   "

		assert.ErrorIs(suite.T(), r.Validate(), ErrTitleRequired)
	})

	suite.Run("NegativeQuantity_ShouldFail", func() {
		r := suite.validRecipe()
		r.Ingredients[0].Quantity = -1

		assert.ErrorIs(suite.T(), r.Validate(), ErrNegativeQuantity)
	})

	suite.Run("BlankIngredientName_ShouldFail", func() {
		r := suite.validRecipe()
		r.Ingredients[1].Name = ""

		assert.ErrorIs(suite.T(), r.Validate(), ErrIngredientNameRequired)
	})

	suite.Run("NegativeServings_ShouldFail", func() {
		r := suite.validRecipe()
		r.Servings = IntPtr(-2)

		assert.ErrorIs(suite.T(), r.Validate(), ErrInvalidServings)
	})
}

func (suite *RecipeTestSuite) TestEnsureIngredientIDs() {
	suite.Run("MissingIDs_ShouldBeAssigned", func() {
		r := suite.validRecipe()
		r.Ingredients[1].ID = "keep-me"

		r.EnsureIngredientIDs()

		for _, ing := range r.Ingredients {
			assert.NotEmpty(suite.T(), ing.ID)
		}
		assert.Equal(suite.T(), "keep-me", r.Ingredients[1].ID)
		assert.NotEqual(suite.T(), r.Ingredients[0].ID, r.Ingredients[2].ID)
	})

	suite.Run("SecondCall_ShouldNotChangeIDs", func() {
		r := suite.validRecipe()
		r.EnsureIngredientIDs()
		first := r.Ingredients[0].ID

		r.EnsureIngredientIDs()

		assert.Equal(suite.T(), first, r.Ingredients[0].ID)
	})
}

func (suite *RecipeTestSuite) TestIngredientByID() {
	r := suite.validRecipe()
	r.EnsureIngredientIDs()

	ing, idx, ok := r.IngredientByID(r.Ingredients[2].ID)

	require.True(suite.T(), ok)
	assert.Equal(suite.T(), 2, idx)
	assert.Equal(suite.T(), "black pepper", ing.Name)

	_, _, ok = r.IngredientByID("missing")
	assert.False(suite.T(), ok)
}

func (suite *RecipeTestSuite) TestTouch() {
	r := suite.validRecipe()
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	r.Touch(created)
	r.Touch(created.Add(time.Hour))

	assert.Equal(suite.T(), "2024-03-01T10:00:00Z", r.CreatedAt)
	assert.Equal(suite.T(), "2024-03-01T11:00:00Z", r.UpdatedAt)
}

func (suite *RecipeTestSuite) TestClone() {
	r := suite.validRecipe()
	r.Nutrition = &MacroInformation{Calories: 500, Protein: FloatPtr(20)}

	c := r.Clone()
	c.Ingredients[0].Name = "linguine"
	c.Tags[0] = "french"
	*c.Servings = 8
	*c.Nutrition.Protein = 99

	assert.Equal(suite.T(), "spaghetti", r.Ingredients[0].Name)
	assert.Equal(suite.T(), "italian", r.Tags[0])
	assert.Equal(suite.T(), 2, *r.Servings)
	assert.Equal(suite.T(), 20.0, *r.Nutrition.Protein)
}

func (suite *RecipeTestSuite) TestClone_KeepsEmptyListsAsArrays() {
	r := &Recipe{Title: "Toast", Ingredients: []Ingredient{}, Steps: []string{}}

	c := r.Clone()
	suite.NotNil(c.Ingredients)
	suite.NotNil(c.Steps)

	data, err := json.Marshal(c)
	suite.Require().NoError(err)
	suite.Contains(string(data), `"ingredients":[]`)
	suite.Contains(string(data), `"steps":[]`)

	bare := (&Recipe{Title: "Water"}).Clone()
	suite.NotNil(bare.Ingredients)
	suite.NotNil(bare.Steps)
	suite.Nil(bare.Tags)
}

func (suite *RecipeTestSuite) TestServingsOrDefault() {
	r := suite.validRecipe()
	assert.Equal(suite.T(), 2, r.ServingsOrDefault())

	r.Servings = nil
	assert.Equal(suite.T(), 1, r.ServingsOrDefault())

	r.Servings = IntPtr(0)
	assert.Equal(suite.T(), 1, r.ServingsOrDefault())
}

func TestIsToTaste(t *testing.T) {
	assert.True(t, IsToTaste(0))
	assert.True(t, IsToTaste(0.001))
	assert.False(t, IsToTaste(0.25))
}

func TestRecipeTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeTestSuite))
}
