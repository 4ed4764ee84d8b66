// AngelaMos | 2026
// entity.go

package chatapp

import (
	"time"

	"github.com/carterperez-dev/staff-portal/internal/access"
)

type ChatApp struct {
	ID                string    `db:"id"`
	Name              string    `db:"name"`
	Description       string    `db:"description"`
	Details           string    `db:"details"`
	URL               string    `db:"url"`
	IsVisibleToAll    bool      `db:"is_visible_to_all"`
	IsAdminOnly       bool      `db:"is_admin_only"`
	CreatedByID       string    `db:"created_by_id"`
	CreatedByUsername string    `db:"created_by_username"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`

	UserTypes []GrantedType `db:"-"`
}

// GrantedType is a user type the app is explicitly shared with.
type GrantedType struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func (a *ChatApp) GrantedTypeIDs() []string {
	ids := make([]string, 0, len(a.UserTypes))
	for _, t := range a.UserTypes {
		ids = append(ids, t.ID)
	}
	return ids
}

func (a *ChatApp) Attributes() access.AppAttributes {
	return access.AppAttributes{
		CreatedByID:    a.CreatedByID,
		IsVisibleToAll: a.IsVisibleToAll,
		IsAdminOnly:    a.IsAdminOnly,
		GrantedTypeIDs: a.GrantedTypeIDs(),
	}
}

type Counts struct {
	Total     int `db:"total"`
	AdminOnly int `db:"admin_only"`
}
