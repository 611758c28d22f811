package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

// RecipeRepository keeps recipes in a map. Ids follow the same 24-hex
// format as the document store.
type RecipeRepository struct {
	mu      sync.RWMutex
	recipes map[string]*recipe.Recipe
	order   []string
}

// NewRecipeRepository creates an empty recipe repository
func NewRecipeRepository() *RecipeRepository {
	return &RecipeRepository{recipes: make(map[string]*recipe.Recipe)}
}

// Create assigns an id and stores a copy of r
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec.ID = primitive.NewObjectID().Hex()
	r.recipes[rec.ID] = rec.Clone()
	r.order = append(r.order, rec.ID)
	return nil
}

// Update replaces a stored recipe
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recipes[rec.ID]; !ok {
		return recipe.ErrRecipeNotFound
	}
	r.recipes[rec.ID] = rec.Clone()
	return nil
}

// Delete removes a recipe
func (r *RecipeRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recipes[id]; !ok {
		return recipe.ErrRecipeNotFound
	}
	delete(r.recipes, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// FindByID returns a copy of the stored recipe
func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*recipe.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recipes[id]
	if !ok {
		return nil, recipe.ErrRecipeNotFound
	}
	return rec.Clone(), nil
}

// List filters newest first
func (r *RecipeRepository) List(ctx context.Context, criteria outbound.ListCriteria) ([]*recipe.Recipe, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(criteria.Search)
	var matched []*recipe.Recipe
	for i := len(r.order) - 1; i >= 0; i-- {
		rec := r.recipes[r.order[i]]
		if search != "" &&
			!strings.Contains(strings.ToLower(rec.Title), search) &&
			!strings.Contains(strings.ToLower(rec.Description), search) {
			continue
		}
		if criteria.Tag != "" && !hasTag(rec, criteria.Tag) {
			continue
		}
		matched = append(matched, rec)
	}

	total := int64(len(matched))
	start := criteria.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if criteria.Limit > 0 && start+criteria.Limit < end {
		end = start + criteria.Limit
	}

	page := make([]*recipe.Recipe, 0, end-start)
	for _, rec := range matched[start:end] {
		page = append(page, rec.Clone())
	}
	return page, total, nil
}

// Tags counts recipes per tag, most used first
func (r *RecipeRepository) Tags(ctx context.Context) ([]outbound.TagCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range r.recipes {
		for _, tag := range rec.Tags {
			counts[tag]++
		}
	}
	tags := make([]outbound.TagCount, 0, len(counts))
	for tag, n := range counts {
		tags = append(tags, outbound.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Tag < tags[j].Tag
	})
	return tags, nil
}

// Count returns the number of stored recipes.
func (r *RecipeRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.recipes)
}

func hasTag(rec *recipe.Recipe, tag string) bool {
	for _, t := range rec.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
