// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
)

// sessionRetention keeps expired sessions around for a day so the
// sessions list can still explain a recent forced logout.
const sessionRetention = 24 * time.Hour

// UserInfo is the slice of a user row authentication needs. The user
// package provides it.
type UserInfo struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         access.Role
	UserTypeID   string
	UserTypeName string
	TokenVersion int
	CreatedAt    time.Time
}

type UserProvider interface {
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Client describes where a session was opened from.
type Client struct {
	UserAgent string
	IPAddress string
}

type Service struct {
	sessions  SessionStore
	jwt       *JWTManager
	users     UserProvider
	blacklist Blacklist
}

func NewService(
	sessions SessionStore,
	jwt *JWTManager,
	users UserProvider,
	blacklist Blacklist,
) *Service {
	return &Service{
		sessions:  sessions,
		jwt:       jwt,
		users:     users,
		blacklist: blacklist,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest, client Client) (*AuthResponse, error) {
	user, err := s.checkCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user logged in",
		"user_id", user.ID,
		"role", user.Role,
		"ip", client.IPAddress,
	)

	session, refresh, err := s.newSession(user.ID, "", client)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return s.respond(user, refresh)
}

// checkCredentials costs one argon2 derivation whether or not the
// username exists.
func (s *Service) checkCredentials(ctx context.Context, username, password string) (*UserInfo, error) {
	user, err := s.users.GetByUsername(ctx, username)
	switch {
	case errors.Is(err, core.ErrNotFound):
		//nolint:errcheck // constant-time path for unknown usernames
		_, _, _ = core.VerifyStoredPassword(password, "")
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, upgraded, err := core.VerifyStoredPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: verify password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	if upgraded != "" {
		if err := s.users.UpdatePassword(ctx, user.ID, upgraded); err != nil {
			slog.WarnContext(ctx, "password hash upgrade failed", "user_id", user.ID, "error", err)
		}
	}

	return user, nil
}

// Refresh trades a refresh token for a new pair. Presenting a token that
// was already traded revokes every session descended from the same login.
func (s *Service) Refresh(ctx context.Context, refreshToken string, client Client) (*AuthResponse, error) {
	current, err := s.sessions.ByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	switch current.state(time.Now()) {
	case tokenRotated:
		return nil, s.reuseDetected(ctx, current)
	case tokenRevoked:
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	case tokenExpired:
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: user gone: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	next, refresh, err := s.newSession(user.ID, current.FamilyID, client)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Rotate(ctx, current.ID, next); err != nil {
		if errors.Is(err, errAlreadyRotated) {
			return nil, s.reuseDetected(ctx, current)
		}
		return nil, fmt.Errorf("refresh: %w", err)
	}

	return s.respond(user, refresh)
}

func (s *Service) reuseDetected(ctx context.Context, token *RefreshToken) error {
	if _, err := s.sessions.Revoke(ctx, familyScope(token.FamilyID)); err != nil {
		slog.ErrorContext(ctx, "revoke session family failed",
			"family_id", token.FamilyID,
			"error", err,
		)
	}
	slog.WarnContext(ctx, "refresh token reuse detected",
		"user_id", token.UserID,
		"family_id", token.FamilyID,
	)
	return ErrTokenReuse
}

// VerifyAccessToken is what the authenticator middleware calls on every
// request. Role and user type come from the current user row, so a
// demotion or type change applies to tokens already in circulation.
func (s *Service) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := s.jwt.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.Contains(ctx, claims.TokenID)
	if err != nil {
		return nil, core.StorageError("verify token", err)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: user gone: %w", core.ErrTokenInvalid)
		}
		return nil, err
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: stale version: %w", core.ErrTokenRevoked)
	}

	claims.Role = user.Role
	claims.UserTypeID = user.UserTypeID

	return claims, nil
}

// Logout blacklists the presented access token and, when supplied, revokes
// the refresh token it was paired with.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
	refreshToken string,
) error {
	if claims == nil {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.blacklist.Add(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return core.StorageError("logout", err)
	}

	if refreshToken == "" {
		return nil
	}

	session, err := s.sessions.ByHash(ctx, core.HashToken(refreshToken))
	switch {
	case errors.Is(err, core.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("logout: %w", err)
	case session.UserID != claims.UserID:
		return fmt.Errorf("logout: %w", core.ErrForbidden)
	}

	if _, err := s.sessions.Revoke(ctx, sessionScope(session.ID)); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// LogoutAll ends every session of userID, including access tokens already
// issued, by bumping the token version.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if _, err := s.sessions.Revoke(ctx, userScope(userID)); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	if err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) GetActiveSessions(ctx context.Context, userID string) ([]SessionInfo, error) {
	tokens, err := s.sessions.ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(tokens))
	for i := range tokens {
		sessions = append(sessions, tokens[i].session())
	}
	return sessions, nil
}

func (s *Service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.sessions.ByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	if session.UserID != userID {
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if _, err := s.sessions.Revoke(ctx, sessionScope(sessionID)); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	ok, _, err := core.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	return s.LogoutAll(ctx, userID)
}

func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.Purge(ctx, time.Now().Add(-sessionRetention))
}

// newSession mints a refresh token for userID. An empty familyID starts a
// new rotation family.
func (s *Service) newSession(userID, familyID string, client Client) (*RefreshToken, *RefreshTokenData, error) {
	refresh, err := s.jwt.CreateRefreshToken(userID, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("create refresh token: %w", err)
	}

	return &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		TokenHash: refresh.Hash,
		FamilyID:  refresh.FamilyID,
		ExpiresAt: refresh.ExpiresAt,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}, refresh, nil
}

func (s *Service) respond(user *UserInfo, refresh *RefreshTokenData) (*AuthResponse, error) {
	issued, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Role:         user.Role,
		UserTypeID:   user.UserTypeID,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken:  issued.Token,
			RefreshToken: refresh.Token,
			TokenType:    "Bearer",
			ExpiresIn:    int(time.Until(issued.ExpiresAt) / time.Second),
			ExpiresAt:    issued.ExpiresAt,
		},
	}, nil
}

var _ middleware.TokenVerifier = (*Service)(nil)
