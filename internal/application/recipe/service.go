// Package recipe provides the application layer for recipe management
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultCacheTTL = 10 * time.Minute
)

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipeRepo outbound.RecipeRepository
	cache      outbound.CacheRepository
	cacheTTL   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewRecipeService creates a new recipe service. cache may be nil.
func NewRecipeService(
	recipeRepo outbound.RecipeRepository,
	cache outbound.CacheRepository,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *RecipeService {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &RecipeService{
		recipeRepo: recipeRepo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger.Named("recipe-service"),
		now:        time.Now,
	}
}

// List returns one page of recipes
func (s *RecipeService) List(ctx context.Context, query inbound.ListRecipesQuery) (*inbound.RecipeListDTO, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := query.Page
	if page < 1 {
		page = 1
	}

	recipes, total, err := s.recipeRepo.List(ctx, outbound.ListCriteria{
		Search: strings.TrimSpace(query.Search),
		Tag:    strings.TrimSpace(query.Tag),
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, errors.NewDatabaseError("list recipes", err)
	}
	if recipes == nil {
		recipes = []*recipe.Recipe{}
	}

	return &inbound.RecipeListDTO{
		Recipes: recipes,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// Get retrieves a recipe by ID
func (s *RecipeService) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	if r, ok := s.getCached(ctx, id); ok {
		return r, nil
	}

	r, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "find recipe")
	}

	s.setCached(ctx, r)
	return r, nil
}

// Create stores a new recipe
func (s *RecipeService) Create(ctx context.Context, input inbound.RecipeInput) (*recipe.Recipe, error) {
	s.logger.Info("Creating new recipe", zap.String("title", input.Title))

	r := input.ToRecipe()
	r.Title = strings.TrimSpace(r.Title)
	if err := r.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	r.EnsureIngredientIDs()
	r.Touch(s.now())

	if err := s.recipeRepo.Create(ctx, r); err != nil {
		return nil, errors.NewDatabaseError("create recipe", err)
	}

	s.logger.Info("Recipe created successfully",
		zap.String("recipe_id", r.ID),
		zap.Int("ingredients", len(r.Ingredients)),
	)
	return r, nil
}

// Update replaces a stored recipe. The last writer wins.
func (s *RecipeService) Update(ctx context.Context, id string, input inbound.RecipeInput) (*recipe.Recipe, error) {
	existing, err := s.recipeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "find recipe")
	}

	r := input.ToRecipe()
	r.ID = existing.ID
	r.Title = strings.TrimSpace(r.Title)
	r.CreatedAt = existing.CreatedAt
	if err := r.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	r.EnsureIngredientIDs()
	r.Touch(s.now())

	if err := s.recipeRepo.Update(ctx, r); err != nil {
		return nil, s.translate(err, id, "update recipe")
	}
	s.invalidate(ctx, id)

	s.logger.Info("Recipe updated", zap.String("recipe_id", id))
	return r, nil
}

// Delete removes a recipe
func (s *RecipeService) Delete(ctx context.Context, id string) error {
	if err := s.recipeRepo.Delete(ctx, id); err != nil {
		return s.translate(err, id, "delete recipe")
	}
	s.invalidate(ctx, id)

	s.logger.Info("Recipe deleted", zap.String("recipe_id", id))
	return nil
}

// Tags lists every tag with its recipe count
func (s *RecipeService) Tags(ctx context.Context) ([]outbound.TagCount, error) {
	tags, err := s.recipeRepo.Tags(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list tags", err)
	}
	if tags == nil {
		tags = []outbound.TagCount{}
	}
	return tags, nil
}

func (s *RecipeService) translate(err error, id, operation string) error {
	if stderrors.Is(err, recipe.ErrRecipeNotFound) {
		return errors.NewRecipeNotFoundError(id)
	}
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.NewDatabaseError(operation, err)
}

func cacheKey(id string) string {
	return fmt.Sprintf("recipe:%s", id)
}

func (s *RecipeService) getCached(ctx context.Context, id string) (*recipe.Recipe, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, cacheKey(id))
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Recipe cache read failed", zap.String("recipe_id", id), zap.Error(err))
		}
		return nil, false
	}
	var r recipe.Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		s.logger.Warn("Dropping unreadable cache entry", zap.String("recipe_id", id), zap.Error(err))
		s.invalidate(ctx, id)
		return nil, false
	}
	return &r, true
}

func (s *RecipeService) setCached(ctx context.Context, r *recipe.Recipe) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(r.ID), data, s.cacheTTL); err != nil {
		s.logger.Warn("Recipe cache write failed", zap.String("recipe_id", r.ID), zap.Error(err))
	}
}

func (s *RecipeService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.logger.Warn("Recipe cache invalidation failed", zap.String("recipe_id", id), zap.Error(err))
	}
}
