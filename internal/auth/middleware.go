package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/contacts-api/internal/authctx"
	"github.com/redmonkez12/contacts-api/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions.
// It lives in authctx so handler packages can read the context without
// importing auth; the alias keeps the auth API unchanged.
type ContextKey = authctx.ContextKey

const (
	UserIDContextKey    = authctx.UserIDContextKey
	UserEmailContextKey = authctx.UserEmailContextKey
)

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
	sessions     SessionInvalidator
}

func NewMiddleware(tokenService TokenService, sessions SessionInvalidator) *Middleware {
	return &Middleware{tokenService: tokenService, sessions: sessions}
}

// RequireAuth validates the access token and rejects tokens issued before
// the user's sessions were force-invalidated.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		// Priority 1: Authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			} else {
				httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
				return
			}
		}

		// Priority 2: Cookie (fallback)
		if token == "" {
			cookieToken, err := GetAccessTokenFromCookie(r)
			if err != nil {
				httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
				return
			}
			token = cookieToken
		}

		claims, err := m.tokenService.VerifyToken(token, PurposeAccess)
		if err != nil {
			if err == ErrExpiredToken {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid user ID in token", httputil.CodeInvalidTokenUserID, http.StatusUnauthorized)
			return
		}

		// Early revocation check against the cache. A cache failure does
		// not lock users out; signature and expiry were already verified.
		invalidated, err := m.sessions.IsInvalidated(r.Context(), userID, claims.IssuedAt)
		if err == nil && invalidated {
			httputil.RespondErrorWithCode(w, "session has been revoked", httputil.CodeSessionRevoked, http.StatusUnauthorized)
			return
		}

		// Add user info to request context
		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		ctx = context.WithValue(ctx, UserEmailContextKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return authctx.GetUserIDFromContext(ctx)
}

// GetUserEmailFromContext extracts the user email from the request context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	return authctx.GetUserEmailFromContext(ctx)
}
