// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/auth"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

// TypeChecker reports which of the given user type ids do not exist.
type TypeChecker interface {
	FindMissing(ctx context.Context, ids []string) ([]string, error)
}

type Service struct {
	repo  Repository
	types TypeChecker
}

func NewService(repo Repository, types TypeChecker) *Service {
	return &Service{repo: repo, types: types}
}

func (s *Service) GetByID(
	ctx context.Context,
	id string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByUsername(
	ctx context.Context,
	username string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) IncrementTokenVersion(
	ctx context.Context,
	userID string,
) error {
	return s.repo.IncrementTokenVersion(ctx, userID)
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) ListUsers(
	ctx context.Context,
	id access.Identity,
	params ListUsersParams,
) ([]User, int, error) {
	if err := access.Authorize(id, access.ActionManageUsers); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	if params.Role != "" {
		role, err := access.ParseRole(params.Role)
		if err != nil {
			return nil, 0, fmt.Errorf("list users: %w", err)
		}
		params.Role = role.String()
	}

	return s.repo.List(ctx, params)
}

func (s *Service) GetUser(
	ctx context.Context,
	id access.Identity,
	userID string,
) (*User, error) {
	if err := access.Authorize(id, access.ActionManageUsers); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) CreateUser(
	ctx context.Context,
	id access.Identity,
	req CreateUserRequest,
) (*User, error) {
	if err := access.Authorize(id, access.ActionManageUsers); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	role, err := access.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("create user: username is required: %w", core.ErrInvalidInput)
	}

	if err := s.requireType(ctx, req.UserTypeID); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         role,
		UserTypeID:   req.UserTypeID,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user created",
		"user_id", user.ID,
		"role", user.Role,
		"actor_id", id.UserID,
	)

	return s.repo.GetByID(ctx, user.ID)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id access.Identity,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if err := access.Authorize(id, access.ActionManageUsers); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, fmt.Errorf("update user: username is required: %w", core.ErrInvalidInput)
		}
		user.Username = username
	}

	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	previousRole := user.Role
	if req.Role != nil {
		role, err := access.ParseRole(*req.Role)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.Role = role
	}

	if req.UserTypeID != nil && *req.UserTypeID != user.UserTypeID {
		if err := s.requireType(ctx, *req.UserTypeID); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		user.UserTypeID = *req.UserTypeID
	}

	if req.Password != nil {
		hash, err := core.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if user.Role != previousRole {
		slog.InfoContext(ctx, "user role changed",
			"user_id", user.ID,
			"from", previousRole,
			"to", user.Role,
			"actor_id", id.UserID,
		)
	}

	return s.repo.GetByID(ctx, user.ID)
}

// DeleteUser rejects self-deletion before looking at the caller's role.
func (s *Service) DeleteUser(
	ctx context.Context,
	id access.Identity,
	userID string,
) error {
	if err := id.Require(); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if userID == id.UserID {
		return fmt.Errorf("delete user: %w", core.ErrSelfDeletion)
	}

	if err := access.Authorize(id, access.ActionManageUsers); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.repo.DeleteRestricted(ctx, userID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "user deleted",
		"user_id", userID,
		"actor_id", id.UserID,
	)

	return nil
}

func (s *Service) GetMe(ctx context.Context, id access.Identity) (*User, error) {
	if err := id.Require(); err != nil {
		return nil, fmt.Errorf("get me: %w", err)
	}

	return s.repo.GetByID(ctx, id.UserID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	id access.Identity,
	req UpdateMeRequest,
) (*User, error) {
	if err := id.Require(); err != nil {
		return nil, fmt.Errorf("update me: %w", err)
	}

	user, err := s.repo.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// EnsureSuperuser creates the bootstrap SUPERUSER when the username is
// free. An existing account is left untouched.
func (s *Service) EnsureSuperuser(
	ctx context.Context,
	username, email, password, userTypeID string,
) (*User, bool, error) {
	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, false, err
	}

	hash, err := core.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         access.RoleSuperuser,
		UserTypeID:   userTypeID,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, false, err
	}

	return user, true, nil
}

func (s *Service) requireType(ctx context.Context, typeID string) error {
	if strings.TrimSpace(typeID) == "" {
		return fmt.Errorf("user type is required: %w", core.ErrInvalidInput)
	}

	missing, err := s.types.FindMissing(ctx, []string{typeID})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("user type %s does not exist: %w", typeID, core.ErrInvalidInput)
	}

	return nil
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		UserTypeID:   u.UserTypeID,
		UserTypeName: u.UserTypeName,
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)
