package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/kalafo-api/internal/apperr"
	"github.com/hongminglow/kalafo-api/internal/auth"
	"github.com/hongminglow/kalafo-api/internal/http/respond"
	"github.com/hongminglow/kalafo-api/internal/models"
	"github.com/hongminglow/kalafo-api/internal/storage"
)

// UserHandlerFunc is a handler that receives the caller resolved by Guard.
type UserHandlerFunc func(w http.ResponseWriter, r *http.Request, user models.User)

// Guard verifies bearer tokens and enforces per-endpoint role allow-lists.
type Guard struct {
	tokens *auth.TokenManager
	users  storage.UserStore
}

// NewGuard constructs a Guard.
func NewGuard(tokens *auth.TokenManager, users storage.UserStore) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authorize resolves the caller from an Authorization header value. It fails with
// an authentication error for a missing, malformed, or expired token, a not-found
// error when the subject no longer exists, and an authorization error when the
// caller's role is not in allowed. An empty allowed list admits every role.
func (g *Guard) Authorize(ctx context.Context, header string, allowed ...models.Role) (models.User, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return models.User{}, apperr.Authentication("unauthenticated", "missing or invalid authorization header")
	}

	claims, err := g.tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return models.User{}, apperr.Authentication("unauthenticated", "invalid or expired token")
	}
	id, err := claims.UserID()
	if err != nil {
		return models.User{}, apperr.Authentication("unauthenticated", "invalid or expired token")
	}

	user, err := g.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, apperr.NotFound("user_not_found", "user not found")
		}
		return models.User{}, apperr.Internal("failed to resolve user", err)
	}

	if len(allowed) > 0 && !user.Role.In(allowed...) {
		return models.User{}, apperr.Authorization("forbidden", "access denied")
	}
	return user, nil
}

// Allow wraps next so it only runs for callers whose role is in allowed.
func (g *Guard) Allow(next UserHandlerFunc, allowed ...models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := g.Authorize(r.Context(), r.Header.Get("Authorization"), allowed...)
		if err != nil {
			respond.Fail(w, r, err)
			return
		}
		next(w, r, user)
	}
}
