package service

import (
	"context"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/arefin/crud-backend/internal/apperror"
	"github.com/arefin/crud-backend/internal/model"
	"github.com/arefin/crud-backend/internal/repository"
)

// ItemService handles CRUD for owned items. Every read and mutation checks
// that the caller owns the item or is a superuser.
type ItemService struct {
	items  repository.ItemRepository
	logger *slog.Logger
}

func NewItemService(items repository.ItemRepository, logger *slog.Logger) *ItemService {
	return &ItemService{items: items, logger: logger}
}

// ItemParams carries the writable fields of an item.
type ItemParams struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (p ItemParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Length(0, 2000)),
	)
}

// List returns the caller's items, newest first.
func (s *ItemService) List(ctx context.Context, actor *model.User, opts repository.ListOptions) ([]model.Item, error) {
	return s.items.ListByOwner(ctx, actor.ID, opts)
}

// Get returns an item if the caller may see it.
func (s *ItemService) Get(ctx context.Context, actor *model.User, id string) (*model.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(actor, item.OwnerID); err != nil {
		return nil, err
	}
	return item, nil
}

// Create stores a new item owned by the caller.
func (s *ItemService) Create(ctx context.Context, actor *model.User, params ItemParams) (*model.Item, error) {
	if err := params.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	item := &model.Item{
		Title:       params.Title,
		Description: params.Description,
		OwnerID:     actor.ID,
	}

	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("item created",
		slog.String("itemID", item.ID),
		slog.String("ownerID", actor.ID),
	)

	return item, nil
}

// UpdateItemParams carries optional item fields; nil leaves a field as-is.
type UpdateItemParams struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (p UpdateItemParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Length(0, 2000)),
	)
}

// Update applies a partial update after the ownership check.
func (s *ItemService) Update(ctx context.Context, actor *model.User, id string, params UpdateItemParams) (*model.Item, error) {
	if err := params.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkOwnership(actor, item.OwnerID); err != nil {
		return nil, err
	}

	if params.Title != nil {
		item.Title = *params.Title
	}
	if params.Description != nil {
		item.Description = *params.Description
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Delete removes an item after the ownership check.
func (s *ItemService) Delete(ctx context.Context, actor *model.User, id string) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwnership(actor, item.OwnerID); err != nil {
		return err
	}

	if err := s.items.Delete(ctx, item.ID); err != nil {
		return err
	}

	s.logger.Info("item deleted",
		slog.String("itemID", id),
		slog.String("actorID", actor.ID),
	)

	return nil
}

// checkOwnership admits the owner and superusers, everyone else gets
// Forbidden.
func checkOwnership(actor *model.User, ownerID string) error {
	if actor == nil {
		return apperror.Forbidden("not enough permissions")
	}
	if actor.ID != ownerID && !actor.IsSuperuser {
		return apperror.Forbidden("not enough permissions")
	}
	return nil
}
