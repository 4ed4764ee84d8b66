// AngelaMos | 2026
// entity.go

package usertype

import (
	"time"
)

type UserType struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Usage counts the rows that keep a user type from being deleted.
type Usage struct {
	UserCount int `db:"user_count"`
	AppCount  int `db:"app_count"`
}

func (u Usage) InUse() bool {
	return u.UserCount > 0 || u.AppCount > 0
}
