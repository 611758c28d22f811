//go:build integration
// +build integration

package mongo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/infrastructure/config"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// RepositoryIntegrationTestSuite runs the repositories against a real mongod
type RepositoryIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	db        *Database
	recipes   *RecipeRepository
	groceries *GroceryRepository
	ctx       context.Context
}

func (suite *RepositoryIntegrationTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	container, err := testcontainers.GenericContainer(suite.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(suite.T(), err, "Failed to start mongo container")
	suite.container = container

	host, err := container.Host(suite.ctx)
	require.NoError(suite.T(), err)
	port, err := container.MappedPort(suite.ctx, "27017")
	require.NoError(suite.T(), err)

	suite.db, err = Connect(suite.ctx, config.DatabaseConfig{
		URI:  fmt.Sprintf("mongodb://%s:%s", host, port.Port()),
		Name: "cookbook_test",
	}, zaptest.NewLogger(suite.T()))
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.db.EnsureIndexes(suite.ctx))

	suite.recipes = NewRecipeRepository(suite.db)
	suite.groceries = NewGroceryRepository(suite.db)
}

func (suite *RepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.db != nil {
		_ = suite.db.Disconnect(suite.ctx)
	}
	if suite.container != nil {
		_ = suite.container.Terminate(suite.ctx)
	}
}

func (suite *RepositoryIntegrationTestSuite) SetupTest() {
	_, err := suite.db.Collection(recipesCollection).DeleteMany(suite.ctx, map[string]interface{}{})
	suite.Require().NoError(err)
	_, err = suite.db.Collection(groceryCollection).DeleteMany(suite.ctx, map[string]interface{}{})
	suite.Require().NoError(err)
}

func (suite *RepositoryIntegrationTestSuite) TestRecipeLifecycle() {
	r := &recipe.Recipe{
		Title:       "Pad Thai",
		Description: "Sweet and sour noodles",
		Ingredients: []recipe.Ingredient{{ID: "n", Quantity: 200, Unit: "g", Name: "rice noodles"}},
		Steps:       []string{"Soak noodles."},
		Tags:        []string{"thai", "noodles"},
		CreatedAt:   "2026-02-01T10:00:00Z",
		UpdatedAt:   "2026-02-01T10:00:00Z",
	}
	suite.Require().NoError(suite.recipes.Create(suite.ctx, r))
	suite.Len(r.ID, 24)

	found, err := suite.recipes.FindByID(suite.ctx, r.ID)
	suite.Require().NoError(err)
	suite.Equal(r.Title, found.Title)
	suite.Equal(r.Ingredients, found.Ingredients)

	list, total, err := suite.recipes.List(suite.ctx, outbound.ListCriteria{Search: "SOUR", Limit: 10})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Len(list, 1)

	tags, err := suite.recipes.Tags(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(tags, 2)

	found.Title = "Pad Thai with Tofu"
	suite.Require().NoError(suite.recipes.Update(suite.ctx, found))

	missing := found.Clone()
	missing.ID = "ffffffffffffffffffffffff"
	suite.ErrorIs(suite.recipes.Update(suite.ctx, missing), recipe.ErrRecipeNotFound)

	_, err = suite.recipes.FindByID(suite.ctx, "not-hex")
	suite.ErrorIs(err, recipe.ErrRecipeNotFound)

	count, err := suite.db.Collection(recipesCollection).CountDocuments(suite.ctx, map[string]interface{}{})
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)

	suite.Require().NoError(suite.recipes.Delete(suite.ctx, r.ID))
	suite.ErrorIs(suite.recipes.Delete(suite.ctx, r.ID), recipe.ErrRecipeNotFound)
}

func (suite *RepositoryIntegrationTestSuite) TestGroceryMerge() {
	first, merged, err := suite.groceries.Merge(suite.ctx, &grocery.Item{
		IngredientName: "Eggs", Quantity: 6, Unit: "pcs", Category: grocery.CategoryDairy,
		CreatedAt: "2026-02-01T10:00:00Z", UpdatedAt: "2026-02-01T10:00:00Z",
	})
	suite.Require().NoError(err)
	suite.False(merged)

	second, merged, err := suite.groceries.Merge(suite.ctx, &grocery.Item{
		IngredientName: "eggs ", Quantity: 6, Unit: "PCS",
		CreatedAt: "2026-02-01T11:00:00Z", UpdatedAt: "2026-02-01T11:00:00Z",
	})
	suite.Require().NoError(err)
	suite.True(merged)
	suite.Equal(first.ID, second.ID)
	suite.Equal(12.0, second.Quantity)
	suite.Equal("Eggs", second.IngredientName)
}

func (suite *RepositoryIntegrationTestSuite) TestGroceryMerge_Concurrent() {
	suite.Require().NoError(suite.insertItem("Flour", 1, "kg"))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := suite.groceries.Merge(suite.ctx, &grocery.Item{IngredientName: "flour", Quantity: 1, Unit: "kg"})
			suite.NoError(err)
		}()
	}
	wg.Wait()

	items, err := suite.groceries.List(suite.ctx, grocery.Filter{})
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal(11.0, items[0].Quantity)
}

func (suite *RepositoryIntegrationTestSuite) insertItem(name string, qty float64, unit string) error {
	_, _, err := suite.groceries.Merge(suite.ctx, &grocery.Item{
		IngredientName: name, Quantity: qty, Unit: unit,
		CreatedAt: "2026-02-01T09:00:00Z", UpdatedAt: "2026-02-01T09:00:00Z",
	})
	return err
}

func TestRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryIntegrationTestSuite))
}
