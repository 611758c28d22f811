// Package draft implements unsaved recipe edits that can be reverted or
// committed over the stored recipe.
package draft

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/draft"
	"github.com/alchemorsel/cookbook/internal/domain/recipe"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

// Service implements inbound.DraftService
type Service struct {
	drafts  outbound.DraftRepository
	recipes inbound.RecipeService
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates the draft service
func NewService(drafts outbound.DraftRepository, recipes inbound.RecipeService, logger *zap.Logger) *Service {
	return &Service{
		drafts:  drafts,
		recipes: recipes,
		logger:  logger.Named("draft-service"),
		now:     time.Now,
	}
}

// Start snapshots a stored recipe into a new draft
func (s *Service) Start(ctx context.Context, recipeID string) (*draft.Draft, error) {
	r, err := s.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	d := draft.New(r, s.now())
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, errors.NewDatabaseError("save draft", err)
	}

	s.logger.Info("Draft started", zap.String("draft_id", d.ID), zap.String("recipe_id", recipeID))
	return d, nil
}

// Get returns one draft
func (s *Service) Get(ctx context.Context, id string) (*draft.Draft, error) {
	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "get draft")
	}
	return d, nil
}

// Save replaces the working copy. The recipe id and the snapshot of the
// original ingredients never change.
func (s *Service) Save(ctx context.Context, id string, input inbound.SaveDraftInput) (*draft.Draft, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	working := input.Recipe.ToRecipe()
	working.ID = d.RecipeID
	working.CreatedAt = d.Recipe.CreatedAt
	working.UpdatedAt = d.Recipe.UpdatedAt
	if err := working.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	working.EnsureIngredientIDs()

	if input.ChangeSet != nil {
		if err := input.ChangeSet.Validate(working); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}

	d.Recipe = working
	d.ChangeSet = input.ChangeSet
	d.UpdatedAt = s.now().UTC()

	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, errors.NewDatabaseError("save draft", err)
	}
	return d, nil
}

// Delete discards a draft
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.drafts.Delete(ctx, id); err != nil {
		return s.translate(err, id, "delete draft")
	}
	return nil
}

// List returns every draft, most recently edited first
func (s *Service) List(ctx context.Context) ([]*draft.Draft, error) {
	drafts, err := s.drafts.ListAll(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list drafts", err)
	}
	if drafts == nil {
		drafts = []*draft.Draft{}
	}
	return drafts, nil
}

// Revert restores the original ingredients
func (s *Service) Revert(ctx context.Context, id string) (*draft.Draft, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d.Revert(s.now())
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, errors.NewDatabaseError("save draft", err)
	}
	return d, nil
}

// Commit writes the working copy over the stored recipe, then discards
// the draft. A failed delete leaves a stale draft behind but the recipe
// is already saved.
func (s *Service) Commit(ctx context.Context, id string) (*recipe.Recipe, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	saved, err := s.recipes.Update(ctx, d.RecipeID, inbound.RecipeInputFrom(d.Recipe))
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, id); err != nil && !stderrors.Is(err, draft.ErrDraftNotFound) {
		s.logger.Warn("Committed draft could not be removed", zap.String("draft_id", id), zap.Error(err))
	}

	s.logger.Info("Draft committed", zap.String("draft_id", id), zap.String("recipe_id", saved.ID))
	return saved, nil
}

func (s *Service) translate(err error, id, operation string) error {
	if stderrors.Is(err, draft.ErrDraftNotFound) {
		return errors.NewDraftNotFoundError(id)
	}
	return errors.NewDatabaseError(operation, err)
}
