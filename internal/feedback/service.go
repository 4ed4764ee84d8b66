// AngelaMos | 2026
// service.go

package feedback

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Submit accepts feedback from anyone, signed in or not. Status always
// starts at NEW.
func (s *Service) Submit(
	ctx context.Context,
	id access.Identity,
	req CreateFeedbackRequest,
) (*Feedback, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("submit feedback: content is required: %w", core.ErrInvalidInput)
	}

	f := &Feedback{
		ID:         uuid.New().String(),
		Content:    content,
		Department: optional(req.Department),
		Name:       optional(req.Name),
		Status:     StatusNew,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "feedback submitted",
		"feedback_id", f.ID,
		"anonymous", id.IsZero(),
	)

	return f, nil
}

func (s *Service) List(
	ctx context.Context,
	id access.Identity,
	params ListParams,
) ([]Feedback, int, error) {
	if err := access.Authorize(id, access.ActionManageFeedback); err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}

	if params.Status != "" {
		st, err := ParseStatus(params.Status)
		if err != nil {
			return nil, 0, fmt.Errorf("list feedback: %w", err)
		}
		params.Status = string(st)
	}

	return s.repo.List(ctx, params)
}

func (s *Service) Get(
	ctx context.Context,
	id access.Identity,
	feedbackID string,
) (*Feedback, error) {
	if err := access.Authorize(id, access.ActionManageFeedback); err != nil {
		return nil, fmt.Errorf("get feedback: %w", err)
	}

	return s.repo.GetByID(ctx, feedbackID)
}

// UpdateStatus allows any transition, including to the current status.
func (s *Service) UpdateStatus(
	ctx context.Context,
	id access.Identity,
	feedbackID, status string,
) (*Feedback, error) {
	if err := access.Authorize(id, access.ActionManageFeedback); err != nil {
		return nil, fmt.Errorf("update feedback status: %w", err)
	}

	st, err := ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("update feedback status: %w", err)
	}

	f, err := s.repo.UpdateStatus(ctx, feedbackID, st)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "feedback status changed",
		"feedback_id", f.ID,
		"status", f.Status,
		"actor_id", id.UserID,
	)

	return f, nil
}

// CountByStatus reports a count for every status, zero included.
func (s *Service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
