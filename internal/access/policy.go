// AngelaMos | 2026
// policy.go

package access

import (
	"fmt"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

// Action is a class of operation gated purely by role.
type Action string

const (
	ActionViewAdminSection   Action = "view_admin_section"
	ActionManageUsers        Action = "manage_users"
	ActionManageUserTypes    Action = "manage_user_types"
	ActionCreateApp          Action = "create_app"
	ActionCreateAdminOnlyApp Action = "create_admin_only_app"
	ActionManageFeedback     Action = "manage_feedback"
)

func CanViewAdminSection(r Role) bool {
	switch r {
	case RoleAdmin, RoleSuperuser:
		return true
	case RoleUser:
		return false
	}
	return false
}

func CanManageUsers(r Role) bool {
	switch r {
	case RoleSuperuser:
		return true
	case RoleUser, RoleAdmin:
		return false
	}
	return false
}

func CanManageUserTypes(r Role) bool {
	switch r {
	case RoleSuperuser:
		return true
	case RoleUser, RoleAdmin:
		return false
	}
	return false
}

func CanCreateAdminOnlyApp(r Role) bool {
	switch r {
	case RoleSuperuser:
		return true
	case RoleUser, RoleAdmin:
		return false
	}
	return false
}

func CanCreateApp(r Role) bool {
	switch r {
	case RoleAdmin, RoleSuperuser:
		return true
	case RoleUser:
		return false
	}
	return false
}

// CanManageFeedback covers listing feedback and changing its status.
func CanManageFeedback(r Role) bool {
	switch r {
	case RoleSuperuser:
		return true
	case RoleUser, RoleAdmin:
		return false
	}
	return false
}

func Allowed(r Role, action Action) bool {
	switch action {
	case ActionViewAdminSection:
		return CanViewAdminSection(r)
	case ActionManageUsers:
		return CanManageUsers(r)
	case ActionManageUserTypes:
		return CanManageUserTypes(r)
	case ActionCreateApp:
		return CanCreateApp(r)
	case ActionCreateAdminOnlyApp:
		return CanCreateAdminOnlyApp(r)
	case ActionManageFeedback:
		return CanManageFeedback(r)
	}
	return false
}

// Authorize checks the identity first and the role second, so a missing
// caller is always ErrUnauthorized and never ErrForbidden.
func Authorize(id Identity, action Action) error {
	if err := id.Require(); err != nil {
		return err
	}
	if !Allowed(id.Role, action) {
		return fmt.Errorf("%s: %w", action, core.ErrForbidden)
	}
	return nil
}
