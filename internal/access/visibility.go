// AngelaMos | 2026
// visibility.go

package access

import (
	"slices"
)

// AppAttributes is the subset of a chat app that visibility and ownership
// depend on.
type AppAttributes struct {
	CreatedByID    string
	IsVisibleToAll bool
	IsAdminOnly    bool
	GrantedTypeIDs []string
}

// IsVisible evaluates the rules in order; the first match wins.
func IsVisible(id Identity, app AppAttributes) bool {
	if id.IsZero() || !id.Role.Valid() {
		return false
	}

	if id.Role == RoleSuperuser {
		return true
	}

	if app.IsAdminOnly && id.Role == RoleUser {
		return false
	}

	if app.IsVisibleToAll {
		return true
	}

	return slices.Contains(app.GrantedTypeIDs, id.UserTypeID)
}

// CanManage reports edit/delete authority. It is independent of IsVisible.
func CanManage(id Identity, app AppAttributes) bool {
	if id.IsZero() {
		return false
	}

	switch id.Role {
	case RoleSuperuser:
		return true
	case RoleAdmin:
		return app.CreatedByID != "" && app.CreatedByID == id.UserID
	case RoleUser:
		return false
	}
	return false
}
