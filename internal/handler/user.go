package handler

import (
	"log/slog"
	"net/http"

	"github.com/arefin/crud-backend/internal/auth"
	"github.com/arefin/crud-backend/internal/service"
)

// UserHandler exposes the user administration endpoints. The admin-only
// routes are guarded by RequireSuperuser at the router; the self-or-admin
// rule for updates is enforced in the service.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleList returns a page of users.
//
// HTTP: GET /api/v1/users?skip=&limit=   (admin only)
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), listOptions(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleGet returns a single user by ID.
//
// HTTP: GET /api/v1/users/{id}   (admin only)
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleCreate creates a user administratively.
//
// HTTP: POST /api/v1/users   (admin only)
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var params service.CreateUserParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Create(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleUpdate applies a partial update to a user. Users can update
// themselves; admins can update anyone.
//
// HTTP: PUT /api/v1/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	var params service.UpdateUserParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), actor, r.PathValue("id"), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes a user.
//
// HTTP: DELETE /api/v1/users/{id}   (admin only)
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
