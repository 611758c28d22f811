package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
)

// GroceryRepository keeps the shopping list in insertion order
type GroceryRepository struct {
	mu    sync.Mutex
	items []*grocery.Item
}

// NewGroceryRepository creates an empty shopping list
func NewGroceryRepository() *GroceryRepository {
	return &GroceryRepository{}
}

func copyItem(i *grocery.Item) *grocery.Item {
	c := *i
	return &c
}

// List returns the items passing filter
func (r *GroceryRepository) List(ctx context.Context, filter grocery.Filter) ([]*grocery.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*grocery.Item, 0, len(r.items))
	for _, item := range r.items {
		if filter.Matches(item) {
			out = append(out, copyItem(item))
		}
	}
	return out, nil
}

// FindByID returns one item
func (r *GroceryRepository) FindByID(ctx context.Context, id string) (*grocery.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		return copyItem(r.items[i]), nil
	}
	return nil, grocery.ErrItemNotFound
}

// Merge adds to the first unpurchased item with the same key, or inserts.
// The lock makes the find-and-increment atomic.
func (r *GroceryRepository) Merge(ctx context.Context, item *grocery.Item) (*grocery.Item, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := item.Key()
	for _, existing := range r.items {
		if existing.Purchased || existing.Key() != key {
			continue
		}
		existing.Quantity += item.Quantity
		if item.UpdatedAt != "" {
			existing.UpdatedAt = item.UpdatedAt
		}
		return copyItem(existing), true, nil
	}

	stored := copyItem(item)
	stored.ID = primitive.NewObjectID().Hex()
	r.items = append(r.items, stored)
	return copyItem(stored), false, nil
}

// Update replaces a stored item
func (r *GroceryRepository) Update(ctx context.Context, item *grocery.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(item.ID)
	if i < 0 {
		return grocery.ErrItemNotFound
	}
	r.items[i] = copyItem(item)
	return nil
}

// Delete removes one item
func (r *GroceryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return grocery.ErrItemNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

// DeletePurchased removes every purchased item
func (r *GroceryRepository) DeletePurchased(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.items[:0]
	var removed int64
	for _, item := range r.items {
		if item.Purchased {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	r.items = kept
	return removed, nil
}

func (r *GroceryRepository) indexOf(id string) int {
	for i, item := range r.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
