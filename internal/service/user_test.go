package service

import (
	"context"
	"errors"
	"testing"

	"github.com/arefin/crud-backend/internal/apperror"
	"github.com/arefin/crud-backend/internal/auth"
	"github.com/arefin/crud-backend/internal/model"
)

func newTestUserService(t *testing.T) (*UserService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	svc := NewUserService(repo, auth.NewPasswordServiceWithCost(4), testLogger())
	return svc, repo
}

func addUser(t *testing.T, repo *fakeUserRepo, username string, superuser bool) *model.User {
	t.Helper()
	user := &model.User{
		Email:          username + "@example.com",
		Username:       username,
		HashedPassword: "$2a$04$fakedigestfakedigestfakedigestfakedigestfakedigest",
		IsActive:       true,
		IsSuperuser:    superuser,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("adding user %q: %v", username, err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate_WithSuperuserFlag(t *testing.T) {
	svc, _ := newTestUserService(t)

	user, err := svc.Create(context.Background(), CreateUserParams{
		RegisterParams: RegisterParams{
			Email:    "admin@example.com",
			Username: "admin",
			Password: "password123",
		},
		IsSuperuser: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !user.IsSuperuser {
		t.Error("Create() dropped the superuser flag")
	}
}

func TestUserCreate_Duplicate(t *testing.T) {
	svc, repo := newTestUserService(t)
	addUser(t, repo, "alice", false)

	_, err := svc.Create(context.Background(), CreateUserParams{
		RegisterParams: RegisterParams{
			Email:    "alice@example.com",
			Username: "alice2",
			Password: "password123",
		},
	})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() duplicate error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUserUpdate_Self(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := addUser(t, repo, "alice", false)

	newName := "Alice Updated"
	updated, err := svc.Update(context.Background(), user, user.ID, UpdateUserParams{
		FullName: &newName,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.FullName != newName {
		t.Errorf("Update() full name = %q, want %q", updated.FullName, newName)
	}
}

func TestUserUpdate_OtherUserForbidden(t *testing.T) {
	svc, repo := newTestUserService(t)
	actor := addUser(t, repo, "alice", false)
	target := addUser(t, repo, "bob", false)

	newName := "Hijacked"
	_, err := svc.Update(context.Background(), actor, target.ID, UpdateUserParams{
		FullName: &newName,
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("Update() by non-owner error = %v, want ErrForbidden", err)
	}
}

func TestUserUpdate_AdminCanUpdateAnyone(t *testing.T) {
	svc, repo := newTestUserService(t)
	admin := addUser(t, repo, "admin", true)
	target := addUser(t, repo, "bob", false)

	inactive := false
	updated, err := svc.Update(context.Background(), admin, target.ID, UpdateUserParams{
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("Update() by admin error = %v", err)
	}
	if updated.IsActive {
		t.Error("Update() did not apply isActive=false")
	}
}

func TestUserUpdate_PasswordIsRehashed(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := addUser(t, repo, "alice", false)

	newPassword := "new-password-123"
	updated, err := svc.Update(context.Background(), user, user.ID, UpdateUserParams{
		Password: &newPassword,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.HashedPassword == newPassword {
		t.Fatal("Update() stored the plaintext password")
	}

	// The new digest must verify against the new plaintext.
	ps := auth.NewPasswordServiceWithCost(4)
	if err := ps.Verify(updated.HashedPassword, newPassword); err != nil {
		t.Errorf("new digest does not verify: %v", err)
	}
}

func TestUserUpdate_PartialLeavesOtherFields(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := addUser(t, repo, "alice", false)

	newName := "Only The Name"
	updated, err := svc.Update(context.Background(), user, user.ID, UpdateUserParams{
		FullName: &newName,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Email != user.Email {
		t.Errorf("Update() changed email: %q", updated.Email)
	}
	if updated.Username != user.Username {
		t.Errorf("Update() changed username: %q", updated.Username)
	}
}

func TestUserUpdate_InvalidEmail(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := addUser(t, repo, "alice", false)

	bad := "not-an-email"
	_, err := svc.Update(context.Background(), user, user.ID, UpdateUserParams{
		Email: &bad,
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Update() with bad email error = %v, want ErrValidation", err)
	}
}

func TestUserUpdate_MissingTarget(t *testing.T) {
	svc, repo := newTestUserService(t)
	admin := addUser(t, repo, "admin", true)

	newName := "Ghost"
	_, err := svc.Update(context.Background(), admin, "no-such-id", UpdateUserParams{
		FullName: &newName,
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() missing target error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// GET / LIST / DELETE TESTS
// =========================================================================

func TestUserGet(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := addUser(t, repo, "alice", false)

	got, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("Get() username = %q, want %q", got.Username, "alice")
	}

	_, err = svc.Get(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() missing error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete(t *testing.T) {
	svc, repo := newTestUserService(t)
	user := addUser(t, repo, "alice", false)

	if err := svc.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	err := svc.Delete(context.Background(), user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}
