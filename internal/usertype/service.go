// AngelaMos | 2026
// service.go

package usertype

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

func (s *Service) List(ctx context.Context, id access.Identity) ([]UserType, error) {
	if err := access.Authorize(id, access.ActionViewAdminSection); err != nil {
		return nil, fmt.Errorf("list user types: %w", err)
	}

	return s.repo.List(ctx)
}

func (s *Service) Get(
	ctx context.Context,
	id access.Identity,
	typeID string,
) (*UserType, error) {
	if err := access.Authorize(id, access.ActionViewAdminSection); err != nil {
		return nil, fmt.Errorf("get user type: %w", err)
	}

	return s.repo.GetByID(ctx, typeID)
}

func (s *Service) Create(
	ctx context.Context,
	id access.Identity,
	req CreateUserTypeRequest,
) (*UserType, error) {
	if err := access.Authorize(id, access.ActionManageUserTypes); err != nil {
		return nil, fmt.Errorf("create user type: %w", err)
	}

	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, fmt.Errorf("create user type: %w", err)
	}

	t := &UserType{
		ID:   uuid.New().String(),
		Name: name,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user type created",
		"user_type_id", t.ID,
		"name", t.Name,
		"actor_id", id.UserID,
	)

	return t, nil
}

func (s *Service) Update(
	ctx context.Context,
	id access.Identity,
	typeID string,
	req UpdateUserTypeRequest,
) (*UserType, error) {
	if err := access.Authorize(id, access.ActionManageUserTypes); err != nil {
		return nil, fmt.Errorf("update user type: %w", err)
	}

	name, err := normalizeName(req.Name)
	if err != nil {
		return nil, fmt.Errorf("update user type: %w", err)
	}

	t, err := s.repo.GetByID(ctx, typeID)
	if err != nil {
		return nil, err
	}

	t.Name = name
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) Delete(ctx context.Context, id access.Identity, typeID string) error {
	if err := access.Authorize(id, access.ActionManageUserTypes); err != nil {
		return fmt.Errorf("delete user type: %w", err)
	}

	if err := s.repo.DeleteUnused(ctx, typeID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "user type deleted",
		"user_type_id", typeID,
		"actor_id", id.UserID,
	)

	return nil
}

func (s *Service) Usage(
	ctx context.Context,
	id access.Identity,
	typeID string,
) (Usage, error) {
	if err := access.Authorize(id, access.ActionManageUserTypes); err != nil {
		return Usage{}, fmt.Errorf("user type usage: %w", err)
	}

	if _, err := s.repo.GetByID(ctx, typeID); err != nil {
		return Usage{}, err
	}

	return s.repo.Usage(ctx, typeID)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Ensure returns the user type with the given name, creating it if needed.
// It bypasses the role check and is only used by bootstrap seeding.
func (s *Service) Ensure(ctx context.Context, name string) (*UserType, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, fmt.Errorf("ensure user type: %w", err)
	}

	t := &UserType{ID: uuid.New().String(), Name: name}
	if err := s.repo.EnsureByName(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name is required: %w", core.ErrInvalidInput)
	}
	return name, nil
}
