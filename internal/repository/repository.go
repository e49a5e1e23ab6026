// Package repository declares the persistence interfaces consumed by the
// service layer. Concrete implementations live in the sqlite and mongo
// subpackages; services only ever see these interfaces.
package repository

import (
	"context"

	"github.com/arefin/crud-backend/internal/model"
)

// ListOptions carries pagination for list queries. Implementations apply
// their own default and maximum page sizes.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository is the identity store. Lookups return apperror.ErrNotFound
// (wrapped) when no row matches. Create must enforce email and username
// uniqueness atomically and return apperror.ErrConflict on collision, so
// concurrent registrations for the same name resolve to exactly one winner.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// ItemRepository stores user-owned items in the relational database.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)
	ListByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]model.Item, error)
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id string) error
}

// NoteRepository stores user-owned notes in the document database. Every
// query is scoped by ownerID; a note belonging to someone else is
// indistinguishable from a missing one.
type NoteRepository interface {
	Create(ctx context.Context, note *model.Note) error
	GetByID(ctx context.Context, id, ownerID string) (*model.Note, error)
	ListByOwner(ctx context.Context, ownerID string, archived *bool, opts ListOptions) ([]model.Note, error)
	Search(ctx context.Context, ownerID, term string, opts ListOptions) ([]model.Note, error)
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, id, ownerID string) error
}
