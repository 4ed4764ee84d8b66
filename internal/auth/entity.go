// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshToken is one link in a rotation family. Presenting a token that
// was already rotated revokes the whole family.
type RefreshToken struct {
	ID           string     `db:"id"`
	UserID       string     `db:"user_id"`
	TokenHash    string     `db:"token_hash"`
	FamilyID     string     `db:"family_id"`
	ExpiresAt    time.Time  `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	IsUsed       bool       `db:"is_used"`
	UsedAt       *time.Time `db:"used_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
	UserAgent    string     `db:"user_agent"`
	IPAddress    string     `db:"ip_address"`
}

type tokenState int

const (
	tokenLive tokenState = iota
	tokenRotated
	tokenRevoked
	tokenExpired
)

// state checks rotation first: a rotated token that comes back is reuse,
// whatever else happened to it since.
func (t *RefreshToken) state(now time.Time) tokenState {
	switch {
	case t.IsUsed:
		return tokenRotated
	case t.RevokedAt != nil:
		return tokenRevoked
	case !now.Before(t.ExpiresAt):
		return tokenExpired
	default:
		return tokenLive
	}
}

func (t *RefreshToken) markRotated(at time.Time, replacedBy string) {
	t.IsUsed = true
	t.UsedAt = &at
	t.ReplacedByID = &replacedBy
}

func (t *RefreshToken) session() SessionInfo {
	return SessionInfo{
		ID:        t.ID,
		UserAgent: t.UserAgent,
		IPAddress: t.IPAddress,
		CreatedAt: t.CreatedAt,
		ExpiresAt: t.ExpiresAt,
	}
}
