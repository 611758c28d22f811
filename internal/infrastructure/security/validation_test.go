package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	apperrors "github.com/alchemorsel/cookbook/pkg/errors"
)

func TestValidate_RecipeInput(t *testing.T) {
	v := NewValidationService(zaptest.NewLogger(t))

	assert.NoError(t, v.Validate(inbound.RecipeInput{
		Title:       "Tomato Soup",
		Ingredients: []inbound.IngredientInput{{Name: "tomatoes", Quantity: 6}},
	}))

	err := v.Validate(inbound.RecipeInput{
		Ingredients: []inbound.IngredientInput{{Name: "", Quantity: -1}},
	})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeValidationFailed, appErr.Code)
	assert.Equal(t, 400, appErr.StatusCode())

	fields := appErr.Metadata["validation_errors"].(apperrors.ValidationErrors)
	var names []string
	for _, fe := range fields {
		names = append(names, fe.Field)
	}
	assert.Contains(t, names, "title")
	assert.Contains(t, names, "ingredients[0].name")
	assert.Contains(t, names, "ingredients[0].quantity")
}

func TestValidate_CustomRules(t *testing.T) {
	v := NewValidationService(zaptest.NewLogger(t))

	assert.NoError(t, v.Validate(inbound.ListGroceryQuery{Category: "Dairy"}))
	assert.Error(t, v.Validate(inbound.ListGroceryQuery{Category: "hardware"}))

	ok := changeset.ChangeSet{}
	ok.Macros.Protein = changeset.Adjustment{Direction: changeset.DirectionUp, Magnitude: 2}
	assert.NoError(t, v.Validate(ok))

	bad := changeset.ChangeSet{}
	bad.Macros.Protein = changeset.Adjustment{Direction: "sideways", Magnitude: 9}
	err := v.Validate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "up, neutral or down")
	assert.Contains(t, err.Error(), "between 0 and 3")
}

func TestValidate_Nil(t *testing.T) {
	v := NewValidationService(zaptest.NewLogger(t))

	err := v.Validate(nil)
	assert.True(t, apperrors.Is(err, apperrors.CodeInternal))
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "Lemon tart", NormalizeWhitespace("  Lemon \t\n tart\x00 "))
	assert.Equal(t, "", NormalizeWhitespace(" \n "))
}
