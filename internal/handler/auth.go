package handler

import (
	"log/slog"
	"net/http"

	"github.com/arefin/crud-backend/internal/auth"
	"github.com/arefin/crud-backend/internal/service"
)

// AuthHandler exposes login, registration, and the current-user endpoint.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleLogin authenticates a username/password pair and returns a bearer
// token.
//
// HTTP: POST /api/v1/auth/login
// Response: {"accessToken":"...","tokenType":"bearer"}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/v1/auth/register
// Responds 201 with the created user; the password digest is never
// serialized.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var params service.RegisterParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.authService.Register(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleMe returns the authenticated caller's profile.
//
// HTTP: GET /api/v1/users/me
// Auth: required — the middleware has already resolved the identity.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// Unreachable on a RequireAuth route, but don't panic if miswired.
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return
	}

	writeJSON(w, http.StatusOK, user)
}
