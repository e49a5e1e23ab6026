// Package service contains the business logic layer. Handlers parse HTTP
// and delegate here; services validate, enforce ownership and privilege
// rules, and talk to repositories through their interfaces.
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

// badCredentials is the single message for both unknown-username and
// wrong-password failures. Keeping them indistinguishable prevents username
// enumeration through the login endpoint.
const badCredentials = "incorrect username or password"

// AuthService composes the password hasher, token codec, and user store into
// the login, registration, and identity-resolution flows. It is stateless;
// every method is a single linear pass that fails on the first violated
// precondition.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// compile-time check that the service satisfies the middleware's resolver
var _ auth.IdentityResolver = (*AuthService)(nil)

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult is the response payload of a successful login.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// Login verifies the username/password pair and issues an access token.
//
// Order matters: credentials are checked before the active flag, so a caller
// probing with bad credentials cannot learn whether an account is disabled.
// A token is never issued for an inactive or nonexistent user.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(badCredentials)
		}
		return nil, fmt.Errorf("service/auth: looking up user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperror.Unauthorized(badCredentials)
		}
		// Unparseable digest: stored data is corrupt. Surface as an
		// internal error, never as a credential failure.
		return nil, fmt.Errorf("service/auth: verifying password for user %s: %w", user.ID, err)
	}

	if !user.IsActive {
		return nil, apperror.Inactive("inactive user")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &LoginResult{AccessToken: token, TokenType: "bearer"}, nil
}

// RegisterParams are the fields accepted at registration.
type RegisterParams struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	IsActive *bool  `json:"isActive"`
}

// Validate enforces field-level constraints before any I/O happens.
func (p RegisterParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Username, validation.Required, validation.Length(3, 50)),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&p.FullName, validation.Length(0, 200)),
	)
}

// Register creates a new account with a hashed credential.
//
// The lookup pre-check gives a friendly Conflict for the common case; the
// UNIQUE constraints in the store are the atomic backstop when two
// registrations race, so at most one wins and the other also observes
// Conflict. The returned user carries no plaintext and its digest is
// excluded from serialization.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	if err := params.Validate(); err != nil {
		return nil, apperror.ValidationFailed("", err.Error())
	}

	_, err := s.users.GetByEmailOrUsername(ctx, params.Email, params.Username)
	if err == nil {
		return nil, apperror.Conflict("user with this email or username already exists")
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking uniqueness for %q: %w", params.Username, err)
	}

	digest, err := s.passwords.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
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
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Conflict from the UNIQUE constraint propagates as-is.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user %q: %w", params.Username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// ResolveToken resolves a bearer token to the calling user: verify the
// signature and expiry, load the subject, and check the active flag.
//
// Every failure before the active check collapses into Unauthorized — a
// vanished subject is no more distinguishable than a bad signature. Executed
// once per authenticated request by the auth middleware.
func (s *AuthService) ResolveToken(ctx context.Context, tokenStr string) (*model.User, error) {
	if tokenStr == "" {
		return nil, apperror.Unauthorized("not authenticated")
	}

	userID, err := s.tokens.Verify(tokenStr)
	if err != nil {
		return nil, apperror.Unauthorized("could not validate credentials")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("could not validate credentials")
		}
		return nil, fmt.Errorf("service/auth: loading token subject %s: %w", userID, err)
	}

	if !user.IsActive {
		return nil, apperror.Inactive("inactive user")
	}

	return user, nil
}

// RequirePrivileged passes the identity through if it carries the superuser
// flag, and fails with Forbidden otherwise.
func RequirePrivileged(user *model.User) (*model.User, error) {
	if user == nil || !user.IsSuperuser {
		return nil, apperror.Forbidden("not enough permissions")
	}
	return user, nil
}
