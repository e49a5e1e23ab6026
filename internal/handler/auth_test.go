package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arefin/crud-backend/internal/auth"
	"github.com/arefin/crud-backend/internal/handler"
	"github.com/arefin/crud-backend/internal/repository/sqlite"
	"github.com/arefin/crud-backend/internal/service"
)

// newTestRouter assembles the real handler/service/store stack over an
// in-memory database, with the same route tree as production for the
// SQLite-backed resources.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 30*time.Minute)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceWithCost(4)

	authService := service.NewAuthService(db, tokens, passwords, logger)
	userService := service.NewUserService(db, passwords, logger)
	itemService := service.NewItemService(db.Items(), logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	itemHandler := handler.NewItemHandler(itemService, logger)

	requireAuth := auth.RequireAuth(authService)
	requireAdmin := auth.RequireSuperuser()

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/register", authHandler.HandleRegister)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Put("/{id}", userHandler.HandleUpdate)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", userHandler.HandleList)
				r.Post("/", userHandler.HandleCreate)
				r.Get("/{id}", userHandler.HandleGet)
				r.Delete("/{id}", userHandler.HandleDelete)
			})
		})
		r.Route("/items", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", itemHandler.HandleList)
			r.Post("/", itemHandler.HandleCreate)
			r.Get("/{id}", itemHandler.HandleGet)
			r.Put("/{id}", itemHandler.HandleUpdate)
			r.Delete("/{id}", itemHandler.HandleDelete)
		})
	})

	return router
}

// doJSON performs a request against the router, marshaling body and
// attaching the bearer token when given.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, router http.Handler, username, password string) map[string]any {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    username + "@example.com",
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "register %s: %s", username, rec.Body.String())

	var user map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func loginUser(t *testing.T, router http.Handler, username, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, "login %s: %s", username, rec.Body.String())

	var result struct {
		AccessToken string `json:"accessToken"`
		TokenType   string `json:"tokenType"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.AccessToken)
	return result.AccessToken
}

// =========================================================================
// REGISTRATION
// =========================================================================

func TestRegisterEndpoint(t *testing.T) {
	router := newTestRouter(t)

	user := registerUser(t, router, "alice", "password123")

	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotEmpty(t, user["id"])

	// The digest must never appear in any serialized form.
	_, leaked := user["hashedPassword"]
	assert.False(t, leaked, "response leaked the password digest")
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflict")
}

func TestRegisterEndpoint_Validation(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email":    "bad-email",
		"username": "alice",
		"password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterEndpoint_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =========================================================================
// LOGIN
// =========================================================================

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "password123")

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result["accessToken"])
	assert.Equal(t, "bearer", result["tokenType"])
}

func TestLoginEndpoint_BadCredentialsIndistinguishable(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "password123")

	wrongPw := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "wrong-password",
	})
	unknown := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "nobody",
		"password": "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, "Bearer", wrongPw.Header().Get("WWW-Authenticate"))

	// Identical bodies: the endpoint must not reveal which half was wrong.
	assert.JSONEq(t, wrongPw.Body.String(), unknown.Body.String())
}

// =========================================================================
// CURRENT USER
// =========================================================================

func TestMeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "password123")
	token := loginUser(t, router, "alice", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var user map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alice", user["username"])
}

func TestMeEndpoint_NoToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
}

func TestMeEndpoint_GarbageToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/me", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// =========================================================================
// ADMIN GUARD
// =========================================================================

func TestUserListEndpoint_RequiresAdmin(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "password123")
	token := loginUser(t, router, "alice", "password123")

	rec := doJSON(t, router, http.MethodGet, "/api/v1/users/", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserUpdateEndpoint_Self(t *testing.T) {
	router := newTestRouter(t)
	user := registerUser(t, router, "alice", "password123")
	token := loginUser(t, router, "alice", "password123")

	rec := doJSON(t, router, http.MethodPut, "/api/v1/users/"+user["id"].(string), token, map[string]any{
		"fullName": "Alice In Full",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Alice In Full", updated["fullName"])
}

func TestUserUpdateEndpoint_OtherUserForbidden(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice", "password123")
	bob := registerUser(t, router, "bob", "password123")
	aliceToken := loginUser(t, router, "alice", "password123")

	rec := doJSON(t, router, http.MethodPut, "/api/v1/users/"+bob["id"].(string), aliceToken, map[string]any{
		"fullName": "Hijacked",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
