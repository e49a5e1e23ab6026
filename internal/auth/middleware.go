package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/arefin/crud-backend/internal/apperror"
	"github.com/arefin/crud-backend/internal/model"
)

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the stored identity.
type contextKey string

const userKey contextKey = "currentUser"

// IdentityResolver turns a bearer token into the calling user. Implemented
// by service.AuthService; declared here so the middleware depends on a
// capability, not on the service package.
type IdentityResolver interface {
	ResolveToken(ctx context.Context, tokenStr string) (*model.User, error)
}

// RequireAuth enforces authentication on protected routes.
//
// It reads the token from the "Authorization: Bearer <token>" header,
// resolves the caller through the injected resolver, and stores the resolved
// user in the request context. A missing or malformed header is treated
// exactly like an invalid token: 401 with a WWW-Authenticate hint. A valid
// token for a disabled account yields 403.
func RequireAuth(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.ResolveToken(r.Context(), bearerToken(r))
			if err != nil {
				if errors.Is(err, apperror.ErrInactive) {
					writeAuthError(w, http.StatusForbidden, "forbidden", "inactive user")
					return
				}
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperuser passes only callers whose account has the superuser flag.
// It must be chained after RequireAuth.
func RequireSuperuser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeAuthError(w, http.StatusUnauthorized, "unauthorized", "valid authentication required")
				return
			}
			if !user.IsSuperuser {
				writeAuthError(w, http.StatusForbidden, "forbidden", "not enough permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext retrieves the authenticated user placed in the request
// context by RequireAuth. Returns (nil, false) on unauthenticated requests.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// bearerToken extracts the token from the Authorization header. Returns ""
// when the header is absent or not a Bearer scheme; the resolver rejects
// empty tokens, so both cases collapse into the invalid-token path.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// writeAuthError emits the same JSON error shape as handler.writeError. The
// middleware cannot call into the handler package without an import cycle,
// so the small encoder lives here.
func writeAuthError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Static shape, no user input — safe to write directly.
	w.Write([]byte(`{"error":"` + errType + `","message":"` + message + `"}`))
}
