// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"errors"
	"testing"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWT(t)

	issued, err := m.CreateAccessToken(AccessTokenClaims{
		UserID:       "u1",
		Role:         access.RoleSuperuser,
		UserTypeID:   "ops",
		TokenVersion: 3,
	})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	claims, err := m.ParseAccessToken(issued.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}

	if claims.UserID != "u1" {
		t.Errorf("UserID = %q, want u1", claims.UserID)
	}
	if claims.Role != access.RoleSuperuser {
		t.Errorf("Role = %q, want SUPERUSER", claims.Role)
	}
	if claims.UserTypeID != "ops" {
		t.Errorf("UserTypeID = %q, want ops", claims.UserTypeID)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("TokenVersion = %d, want 3", claims.TokenVersion)
	}
	if claims.TokenID != issued.ID {
		t.Errorf("TokenID = %q, want %q", claims.TokenID, issued.ID)
	}
}

func TestParseAccessToken_ForeignKeyRejected(t *testing.T) {
	issuer := newTestJWT(t)
	other := newTestJWT(t)

	issued, err := issuer.CreateAccessToken(AccessTokenClaims{UserID: "u1", Role: access.RoleUser})
	if err != nil {
		t.Fatalf("CreateAccessToken: %v", err)
	}

	if _, err := other.ParseAccessToken(issued.Token); !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("ParseAccessToken(foreign) = %v, want ErrTokenInvalid", err)
	}
}

func TestCreateRefreshToken(t *testing.T) {
	m := newTestJWT(t)

	fresh, err := m.CreateRefreshToken("u1", "")
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}
	if fresh.FamilyID == "" {
		t.Error("new refresh token has no family")
	}
	if fresh.Hash != core.HashToken(fresh.Token) {
		t.Error("hash does not match token")
	}

	rotated, err := m.CreateRefreshToken("u1", fresh.FamilyID)
	if err != nil {
		t.Fatalf("CreateRefreshToken: %v", err)
	}
	if rotated.FamilyID != fresh.FamilyID {
		t.Errorf("FamilyID = %q, want %q", rotated.FamilyID, fresh.FamilyID)
	}
	if rotated.Token == fresh.Token {
		t.Error("rotated token equals original")
	}
}
