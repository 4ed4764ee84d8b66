// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

const (
	ClaimsKey contextKey = "jwt_claims"
)

// TokenVerifier turns a bearer token into claims whose role and user type
// reflect current storage, not the values baked into the token.
type TokenVerifier interface {
	VerifyAccessToken(
		ctx context.Context,
		token string,
	) (*AccessTokenClaims, error)
}

type AccessTokenClaims struct {
	UserID       string
	Role         access.Role
	UserTypeID   string
	TokenVersion int
	TokenID      string
	ExpiresAt    time.Time
}

func (c *AccessTokenClaims) Identity() access.Identity {
	return access.Identity{
		UserID:     c.UserID,
		Role:       c.Role,
		UserTypeID: c.UserTypeID,
	}
}

// Authenticator rejects requests without a valid bearer token.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, true)
}

// OptionalAuth attaches an identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authenticate(verifier, false)
}

func authenticate(verifier TokenVerifier, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				if required {
					core.JSONError(w, core.UnauthorizedError("missing authorization token"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := verifier.VerifyAccessToken(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(withClaims(r.Context(), claims))
			case required:
				core.JSONError(w, authFailure(err))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Require gates a whole route group on a role policy action. Services
// check again before touching storage.
func Require(action access.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := access.Authorize(GetIdentity(r.Context()), action); {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, core.ErrUnauthorized):
				core.JSONError(w, core.UnauthorizedError("authentication required"))
			default:
				core.JSONError(w, core.ForbiddenError("insufficient permissions"))
			}
		})
	}
}

var (
	RequireAdmin     = Require(access.ActionViewAdminSection)
	RequireSuperuser = Require(access.ActionManageUsers)
)

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authFailure picks the client-facing error for a rejected token. Anything
// unrecognised is reported as an invalid token.
func authFailure(err error) error {
	if core.IsAppError(err) {
		return err
	}

	for _, m := range []struct {
		target error
		build  func() *core.AppError
	}{
		{core.ErrTokenExpired, core.TokenExpiredError},
		{core.ErrTokenRevoked, core.TokenRevokedError},
		{core.ErrStorageUnavailable, core.StorageUnavailableError},
	} {
		if errors.Is(err, m.target) {
			return m.build()
		}
	}
	return core.TokenInvalidError()
}

func withClaims(ctx context.Context, claims *AccessTokenClaims) context.Context {
	ctx = context.WithValue(ctx, ClaimsKey, claims)
	return access.WithIdentity(ctx, claims.Identity())
}

// GetIdentity returns the zero Identity for anonymous requests.
func GetIdentity(ctx context.Context) access.Identity {
	id, _ := access.FromContext(ctx)
	return id
}

func GetUserID(ctx context.Context) string {
	return GetIdentity(ctx).UserID
}

func GetClaims(ctx context.Context) *AccessTokenClaims {
	claims, _ := ctx.Value(ClaimsKey).(*AccessTokenClaims)
	return claims
}
