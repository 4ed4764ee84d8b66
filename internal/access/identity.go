// AngelaMos | 2026
// identity.go

// Package access holds the portal's authorization rules: who the caller is,
// what their role allows, and which chat apps they may see or manage.
// Everything here is pure; callers pass the Identity explicitly.
package access

import (
	"context"
	"fmt"
	"strings"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleSuperuser Role = "SUPERUSER"
)

// Roles lists every role in ascending privilege order.
var Roles = []Role{RoleUser, RoleAdmin, RoleSuperuser}

func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSuperuser:
		return RoleSuperuser, nil
	}
	return "", fmt.Errorf("parse role %q: %w", s, core.ErrInvalidInput)
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperuser:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Identity is the verified caller of a single request.
type Identity struct {
	UserID     string
	Role       Role
	UserTypeID string
}

func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// Require returns ErrUnauthorized for a zero identity or an unknown role.
func (i Identity) Require() error {
	if i.IsZero() || !i.Role.Valid() {
		return fmt.Errorf("identity: %w", core.ErrUnauthorized)
	}
	return nil
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, false
	}
	return id, true
}
