package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/cookbook/internal/domain/changeset"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	apperrors "github.com/alchemorsel/cookbook/pkg/errors"
)

// MockCompletionClient is a mock implementation of outbound.CompletionClient
type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) Complete(ctx context.Context, req outbound.CompletionRequest) (*outbound.CompletionResponse, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*outbound.CompletionResponse); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRecipeRepository is a mock implementation of outbound.RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, r *recipe.Recipe) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.ID = "64b7f0c2a1b2c3d4e5f60718"
	}
	return args.Error(0)
}

func (m *MockRecipeRepository) Update(ctx context.Context, r *recipe.Recipe) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*recipe.Recipe); ok {
		return r.Clone(), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, criteria outbound.ListCriteria) ([]*recipe.Recipe, int64, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).([]*recipe.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeRepository) Tags(ctx context.Context) ([]outbound.TagCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]outbound.TagCount), args.Error(1)
}

// MockImageService is a mock implementation of inbound.ImageService
type MockImageService struct {
	mock.Mock
}

func (m *MockImageService) Search(ctx context.Context, req inbound.PhotoSearchRequest) (*outbound.PhotoSearchResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*outbound.PhotoSearchResult), args.Error(1)
}

func (m *MockImageService) TrackDownload(downloadLocation string) {
	m.Called(downloadLocation)
}

func (m *MockImageService) ImagesForRecipe(ctx context.Context, r *recipe.Recipe, count int) ([]recipe.RecipeImage, error) {
	args := m.Called(ctx, r, count)
	return args.Get(0).([]recipe.RecipeImage), args.Error(1)
}

type recordedOutcome struct{ operation, outcome string }

type fakeRecorder struct{ outcomes []recordedOutcome }

func (f *fakeRecorder) RecordOutcome(operation, outcome string) {
	f.outcomes = append(f.outcomes, recordedOutcome{operation, outcome})
}

type ServiceTestSuite struct {
	suite.Suite
	completion *MockCompletionClient
	recipes    *MockRecipeRepository
	images     *MockImageService
	recorder   *fakeRecorder
	service    *Service
	stored     *recipe.Recipe
}

func (suite *ServiceTestSuite) SetupTest() {
	suite.completion = new(MockCompletionClient)
	suite.recipes = new(MockRecipeRepository)
	suite.images = new(MockImageService)
	suite.recorder = &fakeRecorder{}
	suite.service = NewService(suite.recipes, suite.completion, suite.images, suite.recorder, Config{
		MaxTokens:             1200,
		RegenerationMaxTokens: 2000,
		Temperature:           0.7,
	}, zaptest.NewLogger(suite.T()))

	suite.stored = &recipe.Recipe{
		ID:    "64b7f0c2a1b2c3d4e5f60718",
		Title: "Garlic Butter Shrimp",
		Ingredients: []recipe.Ingredient{
			{ID: "shrimp", Quantity: 300, Unit: "g", Name: "shrimp"},
			{ID: "butter", Quantity: 2, Unit: "tbsp", Name: "butter"},
			{ID: "garlic", Quantity: 3, Unit: "", Name: "garlic cloves"},
		},
		Steps:    []string{"Melt the butter.", "Cook the shrimp with garlic."},
		Servings: recipe.IntPtr(2),
	}
}

func (suite *ServiceTestSuite) answer(content string) {
	suite.completion.On("Complete", mock.Anything, mock.AnythingOfType("outbound.CompletionRequest")).
		Return(&outbound.CompletionResponse{Content: content}, nil).Once()
}

func (suite *ServiceTestSuite) TestRegenerate() {
	suite.Run("ValidAnswer_ShouldBeOk", func() {
		suite.SetupTest()
		suite.recipes.On("FindByID", mock.Anything, suite.stored.ID).Return(suite.stored, nil)
		suite.answer("```json\n" + `{"title":"Garlic Olive Oil Shrimp","ingredients":[
			{"id":"shrimp","quantity":300,"unit":"g","name":"shrimp"},
			{"id":"","quantity":2,"unit":"tbsp","name":"olive oil"},
			{"id":"garlic","quantity":3,"unit":"","name":"garlic cloves"}],
			"steps":["Warm the oil.","Cook the shrimp with garlic."]}` + "\n```")

		res, err := suite.service.Regenerate(context.Background(), suite.stored.ID, changeset.ChangeSet{
			Substitutions: []changeset.Substitution{{IngredientID: "butter", Replacement: "olive oil"}},
		})

		suite.Require().NoError(err)
		suite.Equal(inbound.OutcomeOk, res.Outcome)
		suite.Equal("Garlic Olive Oil Shrimp", res.Recipe.Title)
		suite.Len(res.Recipe.Ingredients, 3)
		suite.Equal("olive oil", res.Recipe.Ingredients[1].Name)
		suite.Equal([]recordedOutcome{{"regenerate", "ok"}}, suite.recorder.outcomes)

		req := suite.completion.Calls[0].Arguments.Get(1).(outbound.CompletionRequest)
		suite.Equal(2000, req.MaxTokens)
		suite.True(req.JSONMode)
	})

	suite.Run("UnreadableAnswer_ShouldFallBackAndStillDelete", func() {
		suite.SetupTest()
		suite.recipes.On("FindByID", mock.Anything, suite.stored.ID).Return(suite.stored, nil)
		suite.answer("I'm sorry, I can't do that.")

		res, err := suite.service.Regenerate(context.Background(), suite.stored.ID, changeset.ChangeSet{
			Deletions: []string{"butter"},
		})

		suite.Require().NoError(err)
		suite.Equal(inbound.OutcomeFallback, res.Outcome)
		suite.Equal(suite.stored.Title, res.Recipe.Title)
		suite.Len(res.Recipe.Ingredients, 2)
		suite.NotEmpty(res.Warnings)
	})

	suite.Run("LockedIngredient_ShouldSurviveTheModel", func() {
		suite.SetupTest()
		suite.recipes.On("FindByID", mock.Anything, suite.stored.ID).Return(suite.stored, nil)
		suite.answer(`{"ingredients":[{"id":"shrimp","quantity":300,"unit":"g","name":"tofu"}]}`)

		res, err := suite.service.Regenerate(context.Background(), suite.stored.ID, changeset.ChangeSet{
			LockedIngredientIDs: []string{"shrimp", "garlic"},
		})

		suite.Require().NoError(err)
		suite.Equal(suite.stored.Ingredients[0], res.Recipe.Ingredients[0])
		_, _, ok := res.Recipe.IngredientByID("garlic")
		suite.True(ok)
	})

	suite.Run("UnknownIngredientID_ShouldBeRejected", func() {
		suite.SetupTest()
		suite.recipes.On("FindByID", mock.Anything, suite.stored.ID).Return(suite.stored, nil)

		_, err := suite.service.Regenerate(context.Background(), suite.stored.ID, changeset.ChangeSet{
			Deletions: []string{"nope"},
		})

		suite.True(apperrors.Is(err, apperrors.CodeValidationFailed))
		suite.completion.AssertNotCalled(suite.T(), "Complete", mock.Anything, mock.Anything)
	})

	suite.Run("MissingRecipe_ShouldBeNotFound", func() {
		suite.SetupTest()
		suite.recipes.On("FindByID", mock.Anything, "000000000000000000000000").Return(nil, recipe.ErrRecipeNotFound)

		_, err := suite.service.Regenerate(context.Background(), "000000000000000000000000", changeset.ChangeSet{})

		suite.True(apperrors.Is(err, apperrors.CodeRecipeNotFound))
	})

	suite.Run("UpstreamFailure_ShouldBeFatal", func() {
		suite.SetupTest()
		suite.recipes.On("FindByID", mock.Anything, suite.stored.ID).Return(suite.stored, nil)
		suite.completion.On("Complete", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewUpstreamError("OpenAI", 429, `{"error":"rate limited"}`))

		_, err := suite.service.Regenerate(context.Background(), suite.stored.ID, changeset.ChangeSet{})

		appErr, ok := apperrors.As(err)
		suite.Require().True(ok)
		suite.Equal(429, appErr.StatusCode())
		suite.Equal([]recordedOutcome{{"regenerate", "fatal"}}, suite.recorder.outcomes)
	})
}

func (suite *ServiceTestSuite) TestGenerate() {
	suite.Run("UnreadableAnswer_ShouldReturnSkeleton", func() {
		suite.SetupTest()
		suite.answer("not json at all")

		res, err := suite.service.Generate(context.Background(), inbound.GenerateRecipeRequest{Prompt: "miso ramen", Servings: 2})

		suite.Require().NoError(err)
		suite.Equal(inbound.OutcomeFallback, res.Outcome)
		suite.Equal("Miso ramen", res.Recipe.Title)
		suite.Equal(2, *res.Recipe.Servings)
	})

	suite.Run("MultiByteIdea_ShouldKeepValidTitle", func() {
		suite.SetupTest()
		suite.answer("not json at all")

		res, err := suite.service.Generate(context.Background(), inbound.GenerateRecipeRequest{Prompt: "éclairs au chocolat"})

		suite.Require().NoError(err)
		suite.Equal("Éclairs au chocolat", res.Recipe.Title)
		suite.True(utf8.ValidString(res.Recipe.Title))
	})

	suite.Run("LongIdea_ShouldTruncateOnRuneBoundary", func() {
		suite.SetupTest()
		suite.answer("not json at all")

		res, err := suite.service.Generate(context.Background(), inbound.GenerateRecipeRequest{Prompt: strings.Repeat("crème brûlée ", 10)})

		suite.Require().NoError(err)
		suite.True(utf8.ValidString(res.Recipe.Title))
		suite.Equal(maxSkeletonTitle, utf8.RuneCountInString(res.Recipe.Title))
		suite.True(strings.HasPrefix(res.Recipe.Title, "Crème brûlée crème"))
		suite.NoError(res.Recipe.Validate())
	})
}

func (suite *ServiceTestSuite) TestAddWithAI() {
	suite.Run("ValidAnswer_ShouldStoreWithImages", func() {
		suite.SetupTest()
		suite.answer(`{"title":"Miso Ramen","description":"Rich and quick","ingredients":[
			{"quantity":2,"unit":"","name":"ramen noodle nests"},
			{"quantity":2,"unit":"tbsp","name":"white miso"}],
			"steps":["Boil noodles.","Whisk miso into broth."],"servings":2,"tags":["japanese"]}`)
		images := []recipe.RecipeImage{{ID: "photo-1", URL: "https://images.example/1"}}
		suite.images.On("ImagesForRecipe", mock.Anything, mock.AnythingOfType("*recipe.Recipe"), 2).Return(images, nil)
		suite.recipes.On("Create", mock.Anything, mock.AnythingOfType("*recipe.Recipe")).Return(nil)

		r, err := suite.service.AddWithAI(context.Background(), inbound.GenerateRecipeRequest{Prompt: "miso ramen"})

		suite.Require().NoError(err)
		suite.Equal("64b7f0c2a1b2c3d4e5f60718", r.ID)
		suite.Equal(images, r.Images)
		suite.NotEmpty(r.CreatedAt)
		for _, ing := range r.Ingredients {
			suite.NotEmpty(ing.ID)
		}
	})

	suite.Run("FallbackAnswer_ShouldNotStore", func() {
		suite.SetupTest()
		suite.answer("")

		_, err := suite.service.AddWithAI(context.Background(), inbound.GenerateRecipeRequest{Prompt: "miso ramen"})

		suite.Error(err)
		suite.recipes.AssertNotCalled(suite.T(), "Create", mock.Anything, mock.Anything)
	})
}

func (suite *ServiceTestSuite) TestEstimateMacros() {
	suite.Run("ValidAnswer", func() {
		suite.SetupTest()
		suite.answer(`{"calories": 412.6, "protein": 31.27, "carbs": 12, "fat": 22.04}`)

		m, err := suite.service.EstimateMacros(context.Background(), inbound.EstimateMacrosRequest{
			Ingredients: []recipe.Ingredient{{Name: "chicken breast", Quantity: 200, Unit: "g"}},
			Servings:    1,
		})

		suite.Require().NoError(err)
		suite.Equal(413.0, m.Calories)
		suite.Equal(31.3, *m.Protein)
		suite.False(m.Fallback)
	})

	suite.Run("CompletionError_ShouldUseHeuristic", func() {
		suite.SetupTest()
		suite.completion.On("Complete", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		m, err := suite.service.EstimateMacros(context.Background(), inbound.EstimateMacrosRequest{
			Ingredients: []recipe.Ingredient{{Name: "chicken breast", Quantity: 200, Unit: "g"}},
			Servings:    1,
		})

		suite.Require().NoError(err)
		suite.True(m.Fallback)
		suite.Equal(330.0, m.Calories)
		suite.Equal(62.0, *m.Protein)
		suite.Equal([]recordedOutcome{{"estimate_macros", "fallback"}}, suite.recorder.outcomes)
	})

	suite.Run("StoredRecipe_ShouldUseItsServings", func() {
		suite.SetupTest()
		suite.recipes.On("FindByID", mock.Anything, suite.stored.ID).Return(suite.stored, nil)
		suite.answer(`{"calories": 300}`)

		_, err := suite.service.EstimateMacros(context.Background(), inbound.EstimateMacrosRequest{RecipeID: suite.stored.ID})

		suite.Require().NoError(err)
		req := suite.completion.Calls[0].Arguments.Get(1).(outbound.CompletionRequest)
		suite.Contains(req.User, "Servings: 2")
		suite.Contains(req.User, "Recipe: Garlic Butter Shrimp")
	})
}

func (suite *ServiceTestSuite) TestConvertIngredients() {
	ingredients := []recipe.Ingredient{
		{Name: "onion", Quantity: 1.5, Unit: "cup"},
		{Name: "heavy cream", Quantity: 200, Unit: "ml"},
	}

	suite.Run("ValidAnswer", func() {
		suite.SetupTest()
		suite.answer(`{"items":[
			{"ingredientName":"Onions","quantity":2,"unit":"whole","category":"produce"},
			{"ingredientName":"Heavy cream","quantity":1,"unit":"carton","packageDescription":"250 ml carton","category":"chilled"}]}`)

		res, err := suite.service.ConvertIngredients(context.Background(), inbound.ConvertIngredientsRequest{
			Ingredients:    ingredients,
			SourceRecipeID: suite.stored.ID,
		})

		suite.Require().NoError(err)
		suite.Empty(res.Warning)
		suite.Require().Len(res.Items, 2)
		suite.Equal("other", string(res.Items[1].Category))
		suite.Equal(suite.stored.ID, res.Items[0].SourceRecipeID)
	})

	suite.Run("BadShape_ShouldReturnOriginalsWithWarning", func() {
		suite.SetupTest()
		suite.answer(`{"items":[{"quantity":2}]}`)

		res, err := suite.service.ConvertIngredients(context.Background(), inbound.ConvertIngredientsRequest{Ingredients: ingredients})

		suite.Require().NoError(err)
		suite.Equal(conversionWarning, res.Warning)
		suite.Require().Len(res.Items, 2)
		suite.Equal("onion", res.Items[0].IngredientName)
		suite.Equal(1.5, res.Items[0].Quantity)
		suite.Equal("cup", res.Items[0].Unit)
	})
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
