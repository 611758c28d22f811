// Package grocery provides the shopping list use cases
package grocery

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/cookbook/internal/domain/grocery"
	"github.com/alchemorsel/cookbook/internal/ports/inbound"
	"github.com/alchemorsel/cookbook/internal/ports/outbound"
	"github.com/alchemorsel/cookbook/pkg/errors"
)

// Converter turns recipe ingredients into purchasable items
type Converter interface {
	ConvertIngredients(ctx context.Context, req inbound.ConvertIngredientsRequest) (*inbound.ConversionResult, error)
}

// MergeRecorder counts merged and inserted items
type MergeRecorder interface {
	RecordGroceryAdd(merged bool)
}

type nopMergeRecorder struct{}

func (nopMergeRecorder) RecordGroceryAdd(bool) {}

// Service implements inbound.GroceryService
type Service struct {
	repo      outbound.GroceryRepository
	converter Converter
	recorder  MergeRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates the grocery service
func NewService(repo outbound.GroceryRepository, converter Converter, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		converter: converter,
		recorder:  nopMergeRecorder{},
		logger:    logger.Named("grocery-service"),
		now:       time.Now,
	}
}

// WithRecorder sets where merge counts are reported
func (s *Service) WithRecorder(r MergeRecorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// List returns the shopping list
func (s *Service) List(ctx context.Context, query inbound.ListGroceryQuery) ([]*grocery.Item, error) {
	filter := grocery.Filter{Purchased: query.Purchased}
	if query.Category != "" {
		filter.Category = grocery.NormalizeCategory(query.Category)
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, errors.NewDatabaseError("list grocery items", err)
	}
	if items == nil {
		items = []*grocery.Item{}
	}
	return items, nil
}

// Add merges each item into the list in request order. Items before a
// failing one stay stored.
func (s *Service) Add(ctx context.Context, inputs []inbound.GroceryItemInput) ([]*grocery.Item, error) {
	items := make([]*grocery.Item, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToItem()
		if err := items[i].Validate(); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}
	return s.merge(ctx, items)
}

func (s *Service) merge(ctx context.Context, items []*grocery.Item) ([]*grocery.Item, error) {
	out := make([]*grocery.Item, 0, len(items))
	var merged int
	for _, item := range items {
		item.Touch(s.now())
		stored, wasMerged, err := s.repo.Merge(ctx, item)
		if err != nil {
			return nil, errors.NewDatabaseError("merge grocery item", err)
		}
		if wasMerged {
			merged++
		}
		s.recorder.RecordGroceryAdd(wasMerged)
		out = append(out, stored)
	}

	s.logger.Info("Grocery items added",
		zap.Int("items", len(items)),
		zap.Int("merged", merged),
	)
	return out, nil
}

// Update applies a partial update
func (s *Service) Update(ctx context.Context, id string, patch grocery.Patch) (*grocery.Item, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "find grocery item")
	}
	if patch.IsEmpty() {
		return item, nil
	}

	patch.Apply(item)
	if err := item.Validate(); err != nil {
		return nil, errors.NewValidationError(err.Error())
	}
	item.Touch(s.now())

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, s.translate(err, id, "update grocery item")
	}
	return item, nil
}

// Delete removes one item
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.translate(err, id, "delete grocery item")
	}
	return nil
}

// ClearPurchased removes every purchased item
func (s *Service) ClearPurchased(ctx context.Context) (int64, error) {
	n, err := s.repo.DeletePurchased(ctx)
	if err != nil {
		return 0, errors.NewDatabaseError("clear purchased items", err)
	}
	s.logger.Info("Cleared purchased items", zap.Int64("removed", n))
	return n, nil
}

// Normalize converts recipe ingredients into store units and merges the
// result into the list.
func (s *Service) Normalize(ctx context.Context, req inbound.NormalizeRequest) (*inbound.NormalizeResult, error) {
	conversion, err := s.converter.ConvertIngredients(ctx, inbound.ConvertIngredientsRequest{
		Ingredients:    req.Ingredients,
		SourceRecipeID: req.SourceRecipeID,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*grocery.Item, 0, len(conversion.Items))
	for i := range conversion.Items {
		item := conversion.Items[i]
		item.Normalize()
		if item.SourceRecipeID == "" {
			item.SourceRecipeID = req.SourceRecipeID
		}
		if err := item.Validate(); err != nil {
			s.logger.Warn("Skipping invalid converted item",
				zap.String("name", item.IngredientName),
				zap.Error(err),
			)
			continue
		}
		items = append(items, &item)
	}

	stored, err := s.merge(ctx, items)
	if err != nil {
		return nil, err
	}
	return &inbound.NormalizeResult{Items: stored, Warning: conversion.Warning}, nil
}

func (s *Service) translate(err error, id, operation string) error {
	if stderrors.Is(err, grocery.ErrItemNotFound) {
		return errors.NewGroceryItemNotFoundError(id)
	}
	return errors.NewDatabaseError(operation, err)
}
