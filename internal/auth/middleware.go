package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/jobtrack/internal/repository"
)

// Identity is the authenticated caller, as attached to the request context
// by RequireAuth. The fields come from a live user lookup, not from the
// token — so Email and Username reflect the account as it is NOW, even if
// the token was issued before a profile edit.
type Identity struct {
	ID       string
	Email    string
	Username string
}

// contextKey is an unexported type for context keys in this package.
// A package-private key type means no other package can read or shadow the
// identity value — only this package can mint keys of this type.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth enforces authentication on protected routes.
//
// It extracts the bearer token from the Authorization header, validates
// it, and re-fetches the user row — a token for a deleted account is
// rejected even if its signature and expiry are fine. On success the
// resolved Identity is stored in the request context; on any failure the
// chain stops with 401 and the handler never runs.
//
// Public routes simply never pass through this middleware.
func RequireAuth(tokens *TokenService, users repository.UserRepository, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := tokens.Validate(tokenStr)
			if err != nil {
				logger.Debug("rejected token", slog.String("error", err.Error()))
				unauthorized(w)
				return
			}

			// Live-state check: the account must still exist. This also
			// picks up the CURRENT email/username, which may differ from
			// what the token was stamped with.
			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				logger.Debug("token for unresolvable user",
					slog.String("userID", claims.UserID),
					slog.String("error", err.Error()),
				)
				unauthorized(w)
				return
			}

			identity := Identity{
				ID:       user.ID,
				Email:    user.Email,
				Username: user.Username,
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated caller from the request
// context. Returns ok=false if the request never passed RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok && identity.ID != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme comparison is case-insensitive per RFC 7235.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
}
