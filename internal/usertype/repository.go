// AngelaMos | 2026
// repository.go

package usertype

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

type Repository interface {
	Create(ctx context.Context, t *UserType) error
	GetByID(ctx context.Context, id string) (*UserType, error)
	List(ctx context.Context) ([]UserType, error)
	Update(ctx context.Context, t *UserType) error
	Usage(ctx context.Context, id string) (Usage, error)
	DeleteUnused(ctx context.Context, id string) error
	FindMissing(ctx context.Context, ids []string) ([]string, error)
	EnsureByName(ctx context.Context, t *UserType) error
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *UserType) error {
	query := `
		INSERT INTO user_types (id, name)
		VALUES ($1, $2)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, t, query, t.ID, t.Name)
	return core.DBError("create user type", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*UserType, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM user_types
		WHERE id = $1`

	var t UserType
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, core.DBError("get user type", err)
	}

	return &t, nil
}

func (r *repository) List(ctx context.Context) ([]UserType, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM user_types
		ORDER BY name ASC`

	var types []UserType
	if err := r.db.SelectContext(ctx, &types, query); err != nil {
		return nil, core.DBError("list user types", err)
	}

	return types, nil
}

func (r *repository) Update(ctx context.Context, t *UserType) error {
	query := `
		UPDATE user_types
		SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &t.UpdatedAt, query, t.ID, t.Name)
	return core.DBError("update user type", err)
}

func (r *repository) Usage(ctx context.Context, id string) (Usage, error) {
	return usage(ctx, r.db, id)
}

// DeleteUnused locks the row so that no user or app can start referencing
// it while the usage is counted; the FK constraints are the backstop.
func (r *repository) DeleteUnused(ctx context.Context, id string) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked string
		err := tx.GetContext(ctx, &locked,
			`SELECT id FROM user_types WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}

		u, err := usage(ctx, tx, id)
		if err != nil {
			return err
		}
		if u.InUse() {
			return fmt.Errorf("%d users, %d apps: %w", u.UserCount, u.AppCount, core.ErrResourceInUse)
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM user_types WHERE id = $1`, id)
		return err
	})
	if core.IsForeignKeyViolation(err) {
		return fmt.Errorf("delete user type: %w", core.ErrResourceInUse)
	}
	return core.DBError("delete user type", err)
}

func (r *repository) FindMissing(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT id FROM user_types WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("find missing user types: %w", err)
	}

	var found []string
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return nil, core.DBError("find missing user types", err)
	}

	return missing(ids, found), nil
}

func (r *repository) EnsureByName(ctx context.Context, t *UserType) error {
	query := `
		INSERT INTO user_types (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at, updated_at`

	err := r.db.GetContext(ctx, t, query, t.ID, t.Name)
	return core.DBError("ensure user type", err)
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM user_types`); err != nil {
		return 0, core.DBError("count user types", err)
	}
	return total, nil
}

func usage(ctx context.Context, q sqlx.QueryerContext, id string) (Usage, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE user_type_id = $1) AS user_count,
			(SELECT COUNT(*) FROM chat_app_user_types WHERE user_type_id = $1) AS app_count`

	var u Usage
	if err := sqlx.GetContext(ctx, q, &u, query, id); err != nil {
		return Usage{}, core.DBError("user type usage", err)
	}

	return u, nil
}

func missing(want, found []string) []string {
	seen := make(map[string]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}

	var out []string
	for _, id := range want {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
