package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/draft"
	"github.com/alchemorsel/cookbook/internal/infrastructure/cache"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
)

const draftIndexKey = "drafts"

// DraftRepository stores drafts as JSON under draft:<id>, indexed by the
// drafts set.
type DraftRepository struct {
	client *cache.RedisClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewDraftRepository creates a draft repository. Drafts expire after ttl
// of inactivity; zero keeps them forever.
func NewDraftRepository(client *cache.RedisClient, ttl time.Duration, logger *zap.Logger) *DraftRepository {
	return &DraftRepository{
		client: client,
		ttl:    ttl,
		logger: logger.Named("draft-repository"),
	}
}

func draftKey(id string) string {
	return fmt.Sprintf("draft:%s", id)
}

// Get loads a draft
func (r *DraftRepository) Get(ctx context.Context, id string) (*draft.Draft, error) {
	data, err := r.client.Get(ctx, draftKey(id))
	if err != nil {
		if errors.Is(err, outbound.ErrCacheMiss) {
			return nil, draft.ErrDraftNotFound
		}
		return nil, err
	}
	var d draft.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return &d, nil
}

// Save writes a draft and refreshes its TTL
func (r *DraftRepository) Save(ctx context.Context, d *draft.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft %s: %w", d.ID, err)
	}
	if err := r.client.Set(ctx, draftKey(d.ID), data, r.ttl); err != nil {
		return err
	}
	return r.client.SAdd(ctx, draftIndexKey, d.ID)
}

// Delete removes a draft
func (r *DraftRepository) Delete(ctx context.Context, id string) error {
	exists, err := r.client.Exists(ctx, draftKey(id))
	if err != nil {
		return err
	}
	if !exists {
		_ = r.client.SRem(ctx, draftIndexKey, id)
		return draft.ErrDraftNotFound
	}
	if err := r.client.Delete(ctx, draftKey(id)); err != nil {
		return err
	}
	return r.client.SRem(ctx, draftIndexKey, id)
}

// ListAll returns every live draft, newest first. Index entries whose
// draft has expired are pruned on the way.
func (r *DraftRepository) ListAll(ctx context.Context) ([]*draft.Draft, error) {
	ids, err := r.client.SMembers(ctx, draftIndexKey)
	if err != nil {
		return nil, err
	}

	drafts := make([]*draft.Draft, 0, len(ids))
	var stale []string
	for _, id := range ids {
		d, err := r.Get(ctx, id)
		if errors.Is(err, draft.ErrDraftNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	if len(stale) > 0 {
		if err := r.client.SRem(ctx, draftIndexKey, stale...); err != nil {
			r.logger.Warn("Failed to prune expired drafts", zap.Int("count", len(stale)), zap.Error(err))
		}
	}

	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})
	return drafts, nil
}
