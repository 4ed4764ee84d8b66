// AngelaMos | 2026
// testdb.go

// Package testdb opens a migrated, empty Postgres database for repository
// tests. Tests using it are built with the integration tag and skip when
// TEST_DATABASE_URL is unset.
package testdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/staff-portal/internal/config"
	"github.com/carterperez-dev/staff-portal/internal/core"
	"github.com/carterperez-dev/staff-portal/migrations"
)

const EnvURL = "TEST_DATABASE_URL"

// Open connects, applies migrations and truncates every table. The
// connection is closed when the test ends.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL:          url,
		MaxOpenConns: 8,
		MaxIdleConns: 2,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	_, err = db.DB.ExecContext(ctx, `TRUNCATE refresh_tokens, feedback,
		chat_app_user_types, chat_apps, users, user_types`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return db.DB
}

// Exec runs seed statements and fails the test on the first error.
func Exec(t testing.TB, db *sqlx.DB, statements ...string) {
	t.Helper()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
}
