package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/alchemorsel/cookbook/internal/domain/draft"
)

// DraftRepository keeps drafts serialized so callers never share state
// with the store.
type DraftRepository struct {
	mu     sync.RWMutex
	drafts map[string][]byte
}

// NewDraftRepository creates an empty draft store
func NewDraftRepository() *DraftRepository {
	return &DraftRepository{drafts: make(map[string][]byte)}
}

// Get loads a draft
func (r *DraftRepository) Get(ctx context.Context, id string) (*draft.Draft, error) {
	r.mu.RLock()
	data, ok := r.drafts[id]
	r.mu.RUnlock()
	if !ok {
		return nil, draft.ErrDraftNotFound
	}

	var d draft.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Save writes a draft
func (r *DraftRepository) Save(ctx context.Context, d *draft.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drafts[d.ID] = data
	return nil
}

// Delete removes a draft
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[id]; !ok {
		return draft.ErrDraftNotFound
	}
	delete(r.drafts, id)
	return nil
}

// ListAll returns every draft, newest first
func (r *DraftRepository) ListAll(ctx context.Context) ([]*draft.Draft, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.drafts))
	for id := range r.drafts {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	out := make([]*draft.Draft, 0, len(ids))
	for _, id := range ids {
		d, err := r.Get(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}
