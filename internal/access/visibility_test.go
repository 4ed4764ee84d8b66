// AngelaMos | 2026
// visibility_test.go

package access

import (
	"context"
	"testing"
)

var (
	engineer = Identity{UserID: "u-user", Role: RoleUser, UserTypeID: "engineering"}
	manager  = Identity{UserID: "u-admin", Role: RoleAdmin, UserTypeID: "engineering"}
	root     = Identity{UserID: "u-root", Role: RoleSuperuser, UserTypeID: "ops"}
)

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name string
		id   Identity
		app  AppAttributes
		want bool
	}{
		{
			name: "superuser sees admin-only app granted elsewhere",
			id:   root,
			app:  AppAttributes{IsAdminOnly: true, GrantedTypeIDs: []string{"sales"}},
			want: true,
		},
		{
			name: "user never sees admin-only app even when visible to all",
			id:   engineer,
			app:  AppAttributes{IsAdminOnly: true, IsVisibleToAll: true},
			want: false,
		},
		{
			name: "user never sees admin-only app granted to their type",
			id:   engineer,
			app:  AppAttributes{IsAdminOnly: true, GrantedTypeIDs: []string{"engineering"}},
			want: false,
		},
		{
			name: "admin sees admin-only app granted to their type",
			id:   manager,
			app:  AppAttributes{IsAdminOnly: true, GrantedTypeIDs: []string{"engineering"}},
			want: true,
		},
		{
			name: "admin does not see admin-only app granted elsewhere",
			id:   manager,
			app:  AppAttributes{IsAdminOnly: true, GrantedTypeIDs: []string{"sales"}},
			want: false,
		},
		{
			name: "visible to all ignores grants",
			id:   engineer,
			app:  AppAttributes{IsVisibleToAll: true},
			want: true,
		},
		{
			name: "grant match",
			id:   engineer,
			app:  AppAttributes{GrantedTypeIDs: []string{"sales", "engineering"}},
			want: true,
		},
		{
			name: "no grant match",
			id:   engineer,
			app:  AppAttributes{GrantedTypeIDs: []string{"sales"}},
			want: false,
		},
		{
			name: "anonymous sees nothing",
			id:   Identity{},
			app:  AppAttributes{IsVisibleToAll: true},
			want: false,
		},
		{
			name: "creator alone does not grant visibility",
			id:   manager,
			app:  AppAttributes{CreatedByID: manager.UserID, GrantedTypeIDs: []string{"sales"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsVisible(tt.id, tt.app); got != tt.want {
				t.Errorf("IsVisible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanManage(t *testing.T) {
	own := AppAttributes{CreatedByID: manager.UserID}
	other := AppAttributes{CreatedByID: "someone-else", IsVisibleToAll: true}
	orphan := AppAttributes{CreatedByID: ""}

	tests := []struct {
		name string
		id   Identity
		app  AppAttributes
		want bool
	}{
		{"superuser manages anything", root, other, true},
		{"superuser manages orphaned app", root, orphan, true},
		{"admin manages own app", manager, own, true},
		{"admin cannot manage another admin's app", manager, other, false},
		{"admin cannot manage orphaned app", manager, orphan, false},
		{"user cannot manage own app", Identity{UserID: manager.UserID, Role: RoleUser}, own, false},
		{"anonymous cannot manage", Identity{}, own, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanManage(tt.id, tt.app); got != tt.want {
				t.Errorf("CanManage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Error("empty context should carry no identity")
	}

	ctx := WithIdentity(context.Background(), manager)
	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("identity missing from context")
	}
	if got != manager {
		t.Errorf("FromContext = %+v, want %+v", got, manager)
	}

	ctx = WithIdentity(context.Background(), Identity{})
	if _, ok := FromContext(ctx); ok {
		t.Error("zero identity should not be reported as present")
	}
}
