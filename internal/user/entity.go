// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/staff-portal/internal/access"
)

type User struct {
	ID           string      `db:"id"`
	Username     string      `db:"username"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	Role         access.Role `db:"role"`
	UserTypeID   string      `db:"user_type_id"`
	UserTypeName string      `db:"user_type_name"`
	TokenVersion int         `db:"token_version"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}
