package service

import (
	"context"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/arefin/crud-backend/internal/apperror"
	"github.com/arefin/crud-backend/internal/model"
	"github.com/arefin/crud-backend/internal/repository"
)

// NoteService handles CRUD and search for notes in the document store.
//
// Ownership here is enforced by scoping, not by checking: every repository
// call carries the caller's ID in the filter, so another user's note is
// simply not found. There is no admin override on notes.
type NoteService struct {
	notes  repository.NoteRepository
	logger *slog.Logger
}

func NewNoteService(notes repository.NoteRepository, logger *slog.Logger) *NoteService {
	return &NoteService{notes: notes, logger: logger}
}

// NoteParams carries the writable fields of a note.
type NoteParams struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	IsArchived bool     `json:"isArchived"`
}

func (p NoteParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Content, validation.Required),
	)
}

// List returns the caller's notes, optionally filtered by archived state.
func (s *NoteService) List(ctx context.Context, actor *model.User, archived *bool, opts repository.ListOptions) ([]model.Note, error) {
	return s.notes.ListByOwner(ctx, actor.ID, archived, opts)
}

// Search finds the caller's notes whose title or content contains the term,
// case-insensitively.
func (s *NoteService) Search(ctx context.Context, actor *model.User, term string, opts repository.ListOptions) ([]model.Note, error) {
	if term == "" {
		return nil, apperror.ValidationFailed("q", "search term is required")
	}
	return s.notes.Search(ctx, actor.ID, term, opts)
}

// Get returns one of the caller's notes by ID.
func (s *NoteService) Get(ctx context.Context, actor *model.User, id string) (*model.Note, error) {
	return s.notes.GetByID(ctx, id, actor.ID)
}

// Create stores a new note owned by the caller.
func (s *NoteService) Create(ctx context.Context, actor *model.User, params NoteParams) (*model.Note, error) {
	if err := params.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	note := &model.Note{
		OwnerID:    actor.ID,
		Title:      params.Title,
		Content:    params.Content,
		Tags:       tags,
		IsArchived: params.IsArchived,
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note created",
		slog.String("noteID", note.ID),
		slog.String("ownerID", actor.ID),
	)

	return note, nil
}

// UpdateNoteParams carries optional note fields; nil leaves a field as-is.
type UpdateNoteParams struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Tags       *[]string `json:"tags"`
	IsArchived *bool     `json:"isArchived"`
}

func (p UpdateNoteParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Length(1, 200)),
	)
}

// Update applies a partial update to one of the caller's notes.
func (s *NoteService) Update(ctx context.Context, actor *model.User, id string, params UpdateNoteParams) (*model.Note, error) {
	if err := params.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	note, err := s.notes.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		note.Title = *params.Title
	}
	if params.Content != nil {
		note.Content = *params.Content
	}
	if params.Tags != nil {
		note.Tags = *params.Tags
	}
	if params.IsArchived != nil {
		note.IsArchived = *params.IsArchived
	}

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, err
	}

	return note, nil
}

// Delete removes one of the caller's notes.
func (s *NoteService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := s.notes.Delete(ctx, id, actor.ID); err != nil {
		return err
	}

	s.logger.Info("note deleted",
		slog.String("noteID", id),
		slog.String("actorID", actor.ID),
	)

	return nil
}
