// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/alchemorsel/cookbook/internal/domain/draft"
	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
)

// ErrCacheMiss is returned by CacheRepository.Get for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// RecipeRepository defines the interface for recipe persistence.
// Ids are 24 hex characters; a malformed id behaves like a missing one.
type RecipeRepository interface {
	// Create assigns the id and stores the recipe.
	Create(ctx context.Context, r *recipe.Recipe) error
	// Update replaces the stored document. Missing ids yield recipe.ErrRecipeNotFound.
	Update(ctx context.Context, r *recipe.Recipe) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*recipe.Recipe, error)

	List(ctx context.Context, criteria ListCriteria) ([]*recipe.Recipe, int64, error)
	Tags(ctx context.Context) ([]TagCount, error)
}

// ListCriteria defines list parameters for recipes
type ListCriteria struct {
	Search string
	Tag    string
	Offset int
	Limit  int
}

// TagCount is a tag and how many recipes carry it.
type TagCount struct {
	Tag   string `json:"tag" bson:"_id"`
	Count int    `json:"count" bson:"count"`
}

// GroceryRepository defines the interface for shopping list persistence
type GroceryRepository interface {
	List(ctx context.Context, filter grocery.Filter) ([]*grocery.Item, error)
	FindByID(ctx context.Context, id string) (*grocery.Item, error)
	// Merge adds item.Quantity to the first unpurchased item with the same
	// merge key, or inserts item when there is none. The returned bool is
	// true when an existing item absorbed the quantity.
	Merge(ctx context.Context, item *grocery.Item) (*grocery.Item, bool, error)
	Update(ctx context.Context, item *grocery.Item) error
	Delete(ctx context.Context, id string) error
	DeletePurchased(ctx context.Context) (int64, error)
}

// DraftRepository stores unsaved recipe edits.
type DraftRepository interface {
	Get(ctx context.Context, id string) (*draft.Draft, error)
	Save(ctx context.Context, d *draft.Draft) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*draft.Draft, error)
}

// CacheRepository defines the interface for caching
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}
