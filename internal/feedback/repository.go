// AngelaMos | 2026
// repository.go

package feedback

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

type Repository interface {
	Create(ctx context.Context, f *Feedback) error
	GetByID(ctx context.Context, id string) (*Feedback, error)
	List(ctx context.Context, params ListParams) ([]Feedback, int, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Feedback, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const feedbackColumns = `id, content, department, name, status, created_at, updated_at`

func (r *repository) Create(ctx context.Context, f *Feedback) error {
	query := `
		INSERT INTO feedback (id, content, department, name, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		f.ID,
		f.Content,
		f.Department,
		f.Name,
		f.Status,
	).Scan(&f.CreatedAt, &f.UpdatedAt)
	return core.DBError("create feedback", err)
}

func (r *repository) GetByID(ctx context.Context, id string) (*Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM feedback WHERE id = $1`

	var f Feedback
	if err := r.db.GetContext(ctx, &f, query, id); err != nil {
		return nil, core.DBError("get feedback", err)
	}

	return &f, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Feedback, int, error) {
	params.Normalize()

	where := "TRUE"
	var args []any
	if params.Status != "" {
		where = "status = $1"
		args = append(args, params.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM feedback WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, core.DBError("count feedback", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM feedback
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		feedbackColumns, where, len(args)+1, len(args)+2)

	args = append(args, params.PageSize, params.Offset())

	var items []Feedback
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, core.DBError("list feedback", err)
	}

	return items, total, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	id string,
	status Status,
) (*Feedback, error) {
	query := `
		UPDATE feedback
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + feedbackColumns

	var f Feedback
	if err := r.db.GetContext(ctx, &f, query, id, status); err != nil {
		return nil, core.DBError("update feedback status", err)
	}

	return &f, nil
}

func (r *repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM feedback
		GROUP BY status
		ORDER BY status`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, core.DBError("count feedback by status", err)
	}

	return counts, nil
}
