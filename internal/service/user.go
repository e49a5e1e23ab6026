package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/arefin/crud-backend/internal/apperror"
	"github.com/arefin/crud-backend/internal/auth"
	"github.com/arefin/crud-backend/internal/model"
	"github.com/arefin/crud-backend/internal/repository"
)

// UserService covers user administration: listing, lookup, administrative
// creation, self-or-admin updates, and deletion. Privilege checks for the
// admin-only operations happen at the routing layer (RequireSuperuser); the
// self-or-admin rule for updates lives here because it depends on the target.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{users: users, passwords: passwords, logger: logger}
}

// Get returns the user with the given ID.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// List returns a page of users, newest first.
func (s *UserService) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	return s.users.List(ctx, opts)
}

// Create is the administrative creation path. It shares the registration
// params and semantics, including the optional superuser flag which
// self-service registration never exposes.
type CreateUserParams struct {
	RegisterParams
	IsSuperuser bool `json:"isSuperuser"`
}

func (s *UserService) Create(ctx context.Context, params CreateUserParams) (*model.User, error) {
	if err := params.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	_, err := s.users.GetByEmailOrUsername(ctx, params.Email, params.Username)
	if err == nil {
		return nil, apperror.Conflict("user with this email or username already exists")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/user: checking uniqueness for %q: %w", params.Username, err)
	}

	digest, err := s.passwords.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("service/user: hashing password: %w", err)
	}

	active := true
	if params.IsActive != nil {
		active = *params.IsActive
	}

	user := &model.User{
		Email:          params.Email,
		Username:       params.Username,
		HashedPassword: digest,
		FullName:       params.FullName,
		IsActive:       active,
		IsSuperuser:    params.IsSuperuser,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/user: creating user %q: %w", params.Username, err)
	}

	s.logger.Info("user created by admin",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// UpdateUserParams carries the optional fields of a user update. Nil means
// "leave unchanged".
type UpdateUserParams struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"fullName"`
	IsActive *bool   `json:"isActive"`
	Password *string `json:"password"`
}

// Validate checks only the fields that are present.
func (p UpdateUserParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, is.Email),
		validation.Field(&p.Username, validation.Length(3, 50)),
		validation.Field(&p.Password, validation.Length(8, 72)),
		validation.Field(&p.FullName, validation.Length(0, 200)),
	)
}

// Update applies a partial update to the target user.
//
// Users may update themselves; superusers may update anyone. A password
// change goes through the hasher — the plaintext never reaches the store.
// Changing email or username re-enters the uniqueness race, which the store's
// constraints resolve.
func (s *UserService) Update(ctx context.Context, actor *model.User, id string, params UpdateUserParams) (*model.User, error) {
	if actor == nil || (actor.ID != id && !actor.IsSuperuser) {
		return nil, apperror.Forbidden("not enough permissions")
	}

	if err := params.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Username != nil {
		user.Username = *params.Username
	}
	if params.FullName != nil {
		user.FullName = *params.FullName
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	if params.Password != nil {
		digest, err := s.passwords.Hash(*params.Password)
		if err != nil {
			return nil, fmt.Errorf("service/user: hashing new password: %w", err)
		}
		user.HashedPassword = digest
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated",
		slog.String("userID", user.ID),
		slog.String("actorID", actor.ID),
	)

	return user, nil
}

// Delete removes a user permanently. Admin-only; enforced by routing.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.String("userID", id))
	return nil
}
