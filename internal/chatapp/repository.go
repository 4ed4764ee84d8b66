// AngelaMos | 2026
// repository.go

package chatapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

// ListFilter narrows a listing. Viewer, when set, pushes the visibility
// rules into SQL; callers still re-check each row with access.IsVisible.
type ListFilter struct {
	UserTypeID  string
	CreatedByID string
	AdminOnly   bool
	Viewer      *access.Identity
}

type Repository interface {
	Create(ctx context.Context, app *ChatApp, typeIDs []string) error
	GetByID(ctx context.Context, id string) (*ChatApp, error)
	List(ctx context.Context, filter ListFilter) ([]ChatApp, error)
	Update(ctx context.Context, app *ChatApp, typeIDs []string) error
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (Counts, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectApp = `
	SELECT a.id, a.name, a.description, a.details, a.url,
	       a.is_visible_to_all, a.is_admin_only, a.created_by_id,
	       COALESCE(u.username, '') AS created_by_username,
	       a.created_at, a.updated_at
	FROM chat_apps a
	LEFT JOIN users u ON u.id = a.created_by_id`

type grantRow struct {
	ChatAppID string `db:"chat_app_id"`
	ID        string `db:"id"`
	Name      string `db:"name"`
}

type grantInsert struct {
	ChatAppID  string `db:"chat_app_id"`
	UserTypeID string `db:"user_type_id"`
}

// Create inserts the app and its grants in one transaction.
func (r *repository) Create(
	ctx context.Context,
	app *ChatApp,
	typeIDs []string,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO chat_apps (
				id, name, description, details, url,
				is_visible_to_all, is_admin_only, created_by_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at`

		err := tx.QueryRowxContext(ctx, query,
			app.ID,
			app.Name,
			app.Description,
			app.Details,
			app.URL,
			app.IsVisibleToAll,
			app.IsAdminOnly,
			app.CreatedByID,
		).Scan(&app.CreatedAt, &app.UpdatedAt)
		if err != nil {
			return err
		}

		return insertGrants(ctx, tx, app.ID, typeIDs)
	})
	if core.IsForeignKeyViolation(err) {
		return fmt.Errorf("create chat app: unknown user type or creator: %w", core.ErrInvalidInput)
	}
	return core.DBError("create chat app", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*ChatApp, error) {
	var app ChatApp
	if err := r.db.GetContext(ctx, &app, selectApp+` WHERE a.id = $1`, id); err != nil {
		return nil, core.DBError("get chat app", err)
	}

	apps := []ChatApp{app}
	if err := r.loadGrants(ctx, apps); err != nil {
		return nil, err
	}

	return &apps[0], nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]ChatApp, error) {
	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if filter.UserTypeID != "" {
		conditions = append(conditions, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM chat_app_user_types g
			         WHERE g.chat_app_id = a.id AND g.user_type_id = $%d)`, argIdx))
		args = append(args, filter.UserTypeID)
		argIdx++
	}

	if filter.CreatedByID != "" {
		conditions = append(conditions, fmt.Sprintf("a.created_by_id = $%d", argIdx))
		args = append(args, filter.CreatedByID)
		argIdx++
	}

	if filter.AdminOnly {
		conditions = append(conditions, "a.is_admin_only")
	}

	if v := filter.Viewer; v != nil && v.Role != access.RoleSuperuser {
		if v.Role != access.RoleAdmin {
			conditions = append(conditions, "NOT a.is_admin_only")
		}
		conditions = append(conditions, fmt.Sprintf(
			`(a.is_visible_to_all OR EXISTS (
				SELECT 1 FROM chat_app_user_types g
				WHERE g.chat_app_id = a.id AND g.user_type_id = $%d))`, argIdx))
		args = append(args, v.UserTypeID)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY a.name ASC, a.created_at ASC`,
		selectApp, strings.Join(conditions, " AND "))

	var apps []ChatApp
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, core.DBError("list chat apps", err)
	}

	if err := r.loadGrants(ctx, apps); err != nil {
		return nil, err
	}

	return apps, nil
}

// Update rewrites the app row and replaces its grant set atomically.
func (r *repository) Update(
	ctx context.Context,
	app *ChatApp,
	typeIDs []string,
) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE chat_apps
			SET name = $2,
			    description = $3,
			    details = $4,
			    url = $5,
			    is_visible_to_all = $6,
			    is_admin_only = $7,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at`

		err := tx.QueryRowxContext(ctx, query,
			app.ID,
			app.Name,
			app.Description,
			app.Details,
			app.URL,
			app.IsVisibleToAll,
			app.IsAdminOnly,
		).Scan(&app.UpdatedAt)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM chat_app_user_types WHERE chat_app_id = $1`, app.ID); err != nil {
			return err
		}

		return insertGrants(ctx, tx, app.ID, typeIDs)
	})
	if core.IsForeignKeyViolation(err) {
		return fmt.Errorf("update chat app: unknown user type: %w", core.ErrInvalidInput)
	}
	return core.DBError("update chat app", err)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM chat_apps WHERE id = $1`, id)
	if err != nil {
		return core.DBError("delete chat app", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.DBError("delete chat app", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete chat app: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Counts(ctx context.Context) (Counts, error) {
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_admin_only) AS admin_only
		FROM chat_apps`

	var c Counts
	if err := r.db.GetContext(ctx, &c, query); err != nil {
		return Counts{}, core.DBError("count chat apps", err)
	}
	return c, nil
}

func (r *repository) loadGrants(ctx context.Context, apps []ChatApp) error {
	if len(apps) == 0 {
		return nil
	}

	ids := make([]string, 0, len(apps))
	index := make(map[string]int, len(apps))
	for i := range apps {
		ids = append(ids, apps[i].ID)
		index[apps[i].ID] = i
		apps[i].UserTypes = []GrantedType{}
	}

	query, args, err := sqlx.In(`
		SELECT g.chat_app_id, t.id, t.name
		FROM chat_app_user_types g
		JOIN user_types t ON t.id = g.user_type_id
		WHERE g.chat_app_id IN (?)
		ORDER BY t.name ASC`, ids)
	if err != nil {
		return fmt.Errorf("load grants: %w", err)
	}

	var rows []grantRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return core.DBError("load grants", err)
	}

	for _, row := range rows {
		i := index[row.ChatAppID]
		apps[i].UserTypes = append(apps[i].UserTypes, GrantedType{ID: row.ID, Name: row.Name})
	}

	return nil
}

func insertGrants(ctx context.Context, tx *sqlx.Tx, appID string, typeIDs []string) error {
	if len(typeIDs) == 0 {
		return nil
	}

	rows := make([]grantInsert, 0, len(typeIDs))
	for _, id := range typeIDs {
		rows = append(rows, grantInsert{ChatAppID: appID, UserTypeID: id})
	}

	_, err := tx.NamedExecContext(ctx, `
		INSERT INTO chat_app_user_types (chat_app_id, user_type_id)
		VALUES (:chat_app_id, :user_type_id)
		ON CONFLICT DO NOTHING`, rows)
	return err
}
