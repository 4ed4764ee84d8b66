// AngelaMos | 2026
// jwt.go

package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/config"
	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/middleware"
)

// Private claims carried by access tokens.
const (
	claimRole         = "role"
	claimUserType     = "user_type"
	claimTokenVersion = "token_version"
	claimType         = "type"

	tokenTypeAccess = "access"
)

type JWTManager struct {
	signingKey jwk.Key
	verifyKey  jwk.Key
	jwks       jwk.Set
	cfg        config.JWTConfig
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	signingKey, err := loadSigningKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}

	verifyKey, err := signingKey.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("derive public key: %w", err)
	}
	if err := verifyKey.Set(jwk.KeyUsageKey, "sig"); err != nil {
		return nil, fmt.Errorf("set key usage: %w", err)
	}

	jwks := jwk.NewSet()
	if err := jwks.AddKey(verifyKey); err != nil {
		return nil, fmt.Errorf("build jwks: %w", err)
	}

	return &JWTManager{
		signingKey: signingKey,
		verifyKey:  verifyKey,
		jwks:       jwks,
		cfg:        cfg,
	}, nil
}

// AccessTokenClaims are the facts baked into a new access token. Role and
// user type are advisory: verification reloads both from storage.
type AccessTokenClaims struct {
	UserID       string
	Role         access.Role
	UserTypeID   string
	TokenVersion int
}

// IssuedToken is a signed access token together with the identifiers the
// logout path needs to blacklist it.
type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

func (m *JWTManager) CreateAccessToken(claims AccessTokenClaims) (*IssuedToken, error) {
	now := time.Now()
	issued := &IssuedToken{
		ID:        uuid.New().String(),
		ExpiresAt: now.Add(m.cfg.AccessTokenExpire),
	}

	token, err := jwt.NewBuilder().
		JwtID(issued.ID).
		Issuer(m.cfg.Issuer).
		Audience([]string{m.cfg.Audience}).
		Subject(claims.UserID).
		IssuedAt(now).
		NotBefore(now).
		Expiration(issued.ExpiresAt).
		Claim(claimRole, claims.Role.String()).
		Claim(claimUserType, claims.UserTypeID).
		Claim(claimTokenVersion, claims.TokenVersion).
		Claim(claimType, tokenTypeAccess).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.ES256(), m.signingKey))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	issued.Token = string(signed)
	return issued, nil
}

func invalid(reason string) error {
	return fmt.Errorf("verify token: %s: %w", reason, core.ErrTokenInvalid)
}

// ParseAccessToken checks signature, issuer, audience and lifetime. The
// returned role and user type are whatever was current at issue time.
func (m *JWTManager) ParseAccessToken(raw string) (*middleware.AccessTokenClaims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.ES256(), m.verifyKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithAudience(m.cfg.Audience),
	)
	if err != nil {
		if isExpired(err) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenExpired)
		}
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
	}

	var tokenType, roleName, userType string
	var version float64
	for name, dst := range map[string]any{
		claimType:         &tokenType,
		claimRole:         &roleName,
		claimUserType:     &userType,
		claimTokenVersion: &version,
	} {
		if err := token.Get(name, dst); err != nil {
			return nil, invalid("missing " + name)
		}
	}

	if tokenType != tokenTypeAccess {
		return nil, invalid("not an access token")
	}

	role, err := access.ParseRole(roleName)
	if err != nil {
		return nil, invalid("unknown role " + roleName)
	}

	subject, _ := token.Subject()
	jti, _ := token.JwtID()
	if subject == "" || jti == "" {
		return nil, invalid("missing subject or id")
	}

	expiresAt, _ := token.Expiration()

	return &middleware.AccessTokenClaims{
		UserID:       subject,
		Role:         role,
		UserTypeID:   userType,
		TokenVersion: int(version),
		TokenID:      jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func isExpired(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "exp") && strings.Contains(msg, "not satisfied")
}

// JWKSHandler serves the public verification key set.
func (m *JWTManager) JWKSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=3600")

		if err := json.NewEncoder(w).Encode(m.jwks); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
	}
}

func (m *JWTManager) KeyID() string {
	var kid string
	//nolint:errcheck // set by labelKey in NewJWTManager
	_ = m.signingKey.Get(jwk.KeyIDKey, &kid)
	return kid
}

type RefreshTokenData struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
	FamilyID  string
}

// CreateRefreshToken mints an opaque refresh token. An empty familyID
// starts a new family.
func (m *JWTManager) CreateRefreshToken(userID, familyID string) (*RefreshTokenData, error) {
	token, err := core.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token for %s: %w", userID, err)
	}

	if familyID == "" {
		familyID = uuid.New().String()
	}

	return &RefreshTokenData{
		Token:     token,
		Hash:      core.HashToken(token),
		ExpiresAt: time.Now().Add(m.cfg.RefreshTokenExpire),
		FamilyID:  familyID,
	}, nil
}
