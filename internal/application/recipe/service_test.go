package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	apperrors "github.com/alchemorsel/cookbook/pkg/errors"
)

// RecipeServiceTestSuite exercises the service against the in-memory adapters
type RecipeServiceTestSuite struct {
	suite.Suite
	repo    *memory.RecipeRepository
	cache   *memory.CacheRepository
	service *RecipeService
	ctx     context.Context
}

func (suite *RecipeServiceTestSuite) SetupTest() {
	suite.repo = memory.NewRecipeRepository()
	suite.cache = memory.NewCacheRepository()
	suite.service = NewRecipeService(suite.repo, suite.cache, time.Minute, zaptest.NewLogger(suite.T()))
	suite.service.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	suite.ctx = context.Background()
}

func (suite *RecipeServiceTestSuite) validInput() inbound.RecipeInput {
	return inbound.RecipeInput{
		Title:       "  Lemon Chicken ",
		Description: "Bright weeknight dinner",
		Ingredients: []inbound.IngredientInput{
			{Quantity: 500, Unit: "g", Name: "chicken thighs"},
			{Quantity: 1, Name: "lemon"},
		},
		Steps: []string{"Marinate.", "Roast."},
		Tags:  []string{"dinner"},
	}
}

func (suite *RecipeServiceTestSuite) TestCreate() {
	created, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)

	suite.Len(created.ID, 24)
	suite.Equal("Lemon Chicken", created.Title)
	suite.Equal("2026-03-01T12:00:00Z", created.CreatedAt)
	for _, ing := range created.Ingredients {
		suite.NotEmpty(ing.ID)
	}
	suite.Equal(1, suite.repo.Count())
}

func (suite *RecipeServiceTestSuite) TestCreate_BlankTitleStoresNothing() {
	input := suite.validInput()
	input.Title = "   "

	_, err := suite.service.Create(suite.ctx, input)

	suite.True(apperrors.Is(err, apperrors.CodeValidationFailed))
	appErr, ok := apperrors.As(err)
	suite.Require().True(ok)
	suite.Equal(400, appErr.StatusCode())
	suite.Equal(0, suite.repo.Count())
}

func (suite *RecipeServiceTestSuite) TestGet_UsesCache() {
	created, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)

	_, err = suite.service.Get(suite.ctx, created.ID)
	suite.Require().NoError(err)
	cached, err := suite.cache.Exists(suite.ctx, cacheKey(created.ID))
	suite.Require().NoError(err)
	suite.True(cached)

	got, err := suite.service.Get(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal(created.Title, got.Title)
	suite.Equal(created.Ingredients, got.Ingredients)
}

func (suite *RecipeServiceTestSuite) TestGet_Missing() {
	_, err := suite.service.Get(suite.ctx, "ffffffffffffffffffffffff")
	suite.True(apperrors.Is(err, apperrors.CodeRecipeNotFound))

	_, err = suite.service.Get(suite.ctx, "not-an-id")
	suite.True(apperrors.Is(err, apperrors.CodeRecipeNotFound))
}

func (suite *RecipeServiceTestSuite) TestUpdate_KeepsIdentityAndInvalidatesCache() {
	created, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)
	_, err = suite.service.Get(suite.ctx, created.ID)
	suite.Require().NoError(err)

	suite.service.now = func() time.Time { return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) }
	input := suite.validInput()
	input.Title = "Lemon Garlic Chicken"
	input.Ingredients[0].ID = created.Ingredients[0].ID

	updated, err := suite.service.Update(suite.ctx, created.ID, input)
	suite.Require().NoError(err)
	suite.Equal(created.ID, updated.ID)
	suite.Equal(created.CreatedAt, updated.CreatedAt)
	suite.Equal("2026-03-02T08:00:00Z", updated.UpdatedAt)
	suite.Equal(created.Ingredients[0].ID, updated.Ingredients[0].ID)

	cached, err := suite.cache.Exists(suite.ctx, cacheKey(created.ID))
	suite.Require().NoError(err)
	suite.False(cached)

	got, err := suite.service.Get(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal("Lemon Garlic Chicken", got.Title)
}

func (suite *RecipeServiceTestSuite) TestUpdate_MissingChangesNothing() {
	created, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)

	input := suite.validInput()
	input.Title = "Overwritten"
	_, err = suite.service.Update(suite.ctx, "ffffffffffffffffffffffff", input)

	suite.True(apperrors.Is(err, apperrors.CodeRecipeNotFound))
	suite.Equal(1, suite.repo.Count())
	stored, err := suite.repo.FindByID(suite.ctx, created.ID)
	suite.Require().NoError(err)
	suite.Equal("Lemon Chicken", stored.Title)
}

func (suite *RecipeServiceTestSuite) TestUpdate_InvalidInput() {
	created, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)

	input := suite.validInput()
	input.Ingredients[1].Quantity = -2
	_, err = suite.service.Update(suite.ctx, created.ID, input)

	suite.True(apperrors.Is(err, apperrors.CodeValidationFailed))
}

func (suite *RecipeServiceTestSuite) TestDelete() {
	created, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)

	suite.Require().NoError(suite.service.Delete(suite.ctx, created.ID))
	suite.Equal(0, suite.repo.Count())

	err = suite.service.Delete(suite.ctx, created.ID)
	suite.True(apperrors.Is(err, apperrors.CodeRecipeNotFound))
}

func (suite *RecipeServiceTestSuite) TestList_Paging() {
	for _, title := range []string{"Pho", "Ramen", "Udon"} {
		input := suite.validInput()
		input.Title = title
		_, err := suite.service.Create(suite.ctx, input)
		suite.Require().NoError(err)
	}

	page, err := suite.service.List(suite.ctx, inbound.ListRecipesQuery{Page: 2, Limit: 2})
	suite.Require().NoError(err)
	suite.Equal(int64(3), page.Total)
	suite.Equal(2, page.Page)
	suite.Len(page.Recipes, 1)

	all, err := suite.service.List(suite.ctx, inbound.ListRecipesQuery{Limit: 500})
	suite.Require().NoError(err)
	suite.Equal(maxPageSize, all.Limit)
	suite.Equal(1, all.Page)

	none, err := suite.service.List(suite.ctx, inbound.ListRecipesQuery{Search: "lasagna"})
	suite.Require().NoError(err)
	suite.NotNil(none.Recipes)
	suite.Empty(none.Recipes)
}

func (suite *RecipeServiceTestSuite) TestTags() {
	_, err := suite.service.Create(suite.ctx, suite.validInput())
	suite.Require().NoError(err)

	tags, err := suite.service.Tags(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal([]outbound.TagCount{{Tag: "dinner", Count: 1}}, tags)
}

func (suite *RecipeServiceTestSuite) TestRepositoryFailureIsDatabaseError() {
	service := NewRecipeService(failingRepository{}, nil, 0, zaptest.NewLogger(suite.T()))

	_, err := service.Get(suite.ctx, "64b7f0c2a1b2c3d4e5f60718")
	suite.True(apperrors.Is(err, apperrors.CodeDatabaseError))
}

type failingRepository struct {
	outbound.RecipeRepository
}

func (failingRepository) FindByID(context.Context, string) (*recipe.Recipe, error) {
	return nil, errors.New("connection reset")
}

func TestRecipeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeServiceTestSuite))
}
