// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	DeleteRestricted(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	Count(ctx context.Context) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectUser = `
	SELECT u.id, u.username, u.email, u.password_hash, u.role, u.user_type_id,
	       COALESCE(t.name, '') AS user_type_name, u.token_version,
	       u.created_at, u.updated_at
	FROM users u
	LEFT JOIN user_types t ON t.id = u.user_type_id`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, role, user_type_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at, token_version`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.UserTypeID,
	)
	if core.IsForeignKeyViolation(err) {
		return fmt.Errorf("create user: user type does not exist: %w", core.ErrInvalidInput)
	}
	return core.DBError("create user", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	var user User
	if err := r.db.GetContext(ctx, &user, selectUser+` WHERE u.id = $1`, id); err != nil {
		return nil, core.DBError("get user", err)
	}

	return &user, nil
}

func (r *repository) GetByUsername(
	ctx context.Context,
	username string,
) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, selectUser+` WHERE u.username = $1`, username)
	if err != nil {
		return nil, core.DBError("get user by username", err)
	}

	return &user, nil
}

// Update writes every mutable column in one statement. A changed password
// hash also bumps token_version so existing sessions stop verifying.
func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET username = $2,
		    email = $3,
		    role = $4,
		    user_type_id = $5,
		    token_version = token_version +
		        CASE WHEN password_hash <> $6 THEN 1 ELSE 0 END,
		    password_hash = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at, token_version`

	row := r.db.QueryRowxContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Role,
		user.UserTypeID,
		user.PasswordHash,
	)
	err := row.Scan(&user.UpdatedAt, &user.TokenVersion)
	if core.IsForeignKeyViolation(err) {
		return fmt.Errorf("update user: user type does not exist: %w", core.ErrInvalidInput)
	}
	return core.DBError("update user", err)
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "update password", query, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(
	ctx context.Context,
	id string,
) error {
	query := `
		UPDATE users
		SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1`

	return r.execOne(ctx, "increment token version", query, id)
}

// DeleteRestricted refuses to delete a user who still owns chat apps. The
// row lock keeps a concurrent app creation from slipping in between.
func (r *repository) DeleteRestricted(ctx context.Context, id string) error {
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var locked string
		err := tx.GetContext(ctx, &locked,
			`SELECT id FROM users WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}

		var owned int
		err = tx.GetContext(ctx, &owned,
			`SELECT COUNT(*) FROM chat_apps WHERE created_by_id = $1`, id)
		if err != nil {
			return err
		}
		if owned > 0 {
			return fmt.Errorf("user owns %d chat apps: %w", owned, core.ErrResourceInUse)
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
	if core.IsForeignKeyViolation(err) {
		return fmt.Errorf("delete user: %w", core.ErrResourceInUse)
	}
	return core.DBError("delete user", err)
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(u.username ILIKE $%d OR u.email ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Role != "" {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", argIdx))
		args = append(args, params.Role)
		argIdx++
	}

	if params.UserTypeID != "" {
		conditions = append(conditions, fmt.Sprintf("u.user_type_id = $%d", argIdx))
		args = append(args, params.UserTypeID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM users u WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, core.DBError("count users", err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY u.created_at DESC
		LIMIT $%d OFFSET $%d`,
		selectUser, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, core.DBError("list users", err)
	}

	return users, total, nil
}

func (r *repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, core.DBError("count users", err)
	}
	return total, nil
}

func (r *repository) execOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return core.DBError(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.DBError(op, err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}

	return nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
