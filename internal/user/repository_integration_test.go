// AngelaMos | 2026
// repository_integration_test.go

//go:build integration

package user

import (
	"context"
	"errors"
	"testing"

	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/internal/testdb"
)

func TestRepository_DeleteRestricted(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	testdb.Exec(t, db,
		`INSERT INTO user_types (id, name) VALUES ('eng', 'Engineering')`,
		`INSERT INTO users (id, username, password_hash, user_type_id) VALUES
			('owner', 'owner', 'x', 'eng'),
			('idle', 'idle', 'x', 'eng')`,
		`INSERT INTO chat_apps (id, name, url, created_by_id) VALUES ('a1', 'Tool', 'https://t', 'owner')`,
	)

	err := repo.DeleteRestricted(ctx, "owner")
	if !errors.Is(err, core.ErrResourceInUse) {
		t.Errorf("DeleteRestricted(owner) error = %v, want ErrResourceInUse", err)
	}
	if _, err := repo.GetByID(ctx, "owner"); err != nil {
		t.Errorf("GetByID(owner) error = %v, want row kept", err)
	}

	if err := repo.DeleteRestricted(ctx, "idle"); err != nil {
		t.Fatalf("DeleteRestricted(idle) error = %v", err)
	}
	if _, err := repo.GetByID(ctx, "idle"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetByID(idle) error = %v, want ErrNotFound", err)
	}

	if err := repo.DeleteRestricted(ctx, "ghost"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteRestricted(ghost) error = %v, want ErrNotFound", err)
	}

	testdb.Exec(t, db, `DELETE FROM chat_apps WHERE created_by_id = 'owner'`)
	if err := repo.DeleteRestricted(ctx, "owner"); err != nil {
		t.Errorf("DeleteRestricted(owner) once released error = %v", err)
	}
}
