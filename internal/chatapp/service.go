// AngelaMos | 2026
// service.go

package chatapp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/staff-portal/internal/access"
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

// List returns the caller's catalog: every app IsVisible allows, narrowed
// by the optional user type and ownership filters.
func (s *Service) List(
	ctx context.Context,
	id access.Identity,
	params ListParams,
) ([]ChatApp, error) {
	if err := id.Require(); err != nil {
		return nil, fmt.Errorf("list chat apps: %w", err)
	}

	filter := ListFilter{Viewer: &id}
	if params.UserTypeID != "" && params.UserTypeID != "all" {
		filter.UserTypeID = params.UserTypeID
	}
	if params.Mine {
		filter.CreatedByID = id.UserID
	}

	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return visibleTo(id, apps), nil
}

// Get masks apps the caller cannot see as NotFound.
func (s *Service) Get(
	ctx context.Context,
	id access.Identity,
	appID string,
) (*ChatApp, error) {
	if err := id.Require(); err != nil {
		return nil, fmt.Errorf("get chat app: %w", err)
	}

	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}

	if !access.IsVisible(id, app.Attributes()) {
		denied(ctx, "chat_app.masked", id, appID)
		return nil, fmt.Errorf("get chat app: %w", core.ErrNotFound)
	}

	return app, nil
}

func (s *Service) Create(
	ctx context.Context,
	id access.Identity,
	req CreateChatAppRequest,
) (*ChatApp, error) {
	if err := access.Authorize(id, access.ActionCreateApp); err != nil {
		denied(ctx, "chat_app.create_denied", id, "")
		return nil, fmt.Errorf("create chat app: %w", err)
	}

	if req.IsAdminOnly {
		if err := access.Authorize(id, access.ActionCreateAdminOnlyApp); err != nil {
			denied(ctx, "chat_app.admin_only_denied", id, "")
			return nil, fmt.Errorf("create chat app: %w", err)
		}
	}

	// An explicit empty list means "my own type"; a missing one is a
	// malformed request.
	if req.UserTypeIDs == nil {
		return nil, fmt.Errorf("create chat app: userTypeIds must be an array: %w", core.ErrInvalidInput)
	}

	app := &ChatApp{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Details:        req.Details,
		URL:            strings.TrimSpace(req.URL),
		IsVisibleToAll: req.IsVisibleToAll,
		IsAdminOnly:    req.IsAdminOnly,
		CreatedByID:    id.UserID,
	}

	typeIDs := dedupe(req.UserTypeIDs)
	if len(typeIDs) == 0 {
		typeIDs = []string{id.UserTypeID}
	}

	return s.insert(ctx, id, app, typeIDs)
}

// CreateAdminApp creates an admin-only app granted to the caller's own
// user type.
func (s *Service) CreateAdminApp(
	ctx context.Context,
	id access.Identity,
	req CreateAdminAppRequest,
) (*ChatApp, error) {
	if err := access.Authorize(id, access.ActionCreateAdminOnlyApp); err != nil {
		denied(ctx, "chat_app.admin_only_denied", id, "")
		return nil, fmt.Errorf("create admin app: %w", err)
	}

	app := &ChatApp{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Details:     req.Details,
		URL:         strings.TrimSpace(req.URL),
		IsAdminOnly: true,
		CreatedByID: id.UserID,
	}

	return s.insert(ctx, id, app, []string{id.UserTypeID})
}

// ListAdminApps backs the admin section: a SUPERUSER sees every app, an
// ADMIN sees the admin-only apps visible to them.
func (s *Service) ListAdminApps(ctx context.Context, id access.Identity) ([]ChatApp, error) {
	if err := access.Authorize(id, access.ActionViewAdminSection); err != nil {
		return nil, fmt.Errorf("list admin apps: %w", err)
	}

	if id.Role == access.RoleSuperuser {
		return s.repo.List(ctx, ListFilter{})
	}

	apps, err := s.repo.List(ctx, ListFilter{AdminOnly: true, Viewer: &id})
	if err != nil {
		return nil, err
	}

	return visibleTo(id, apps), nil
}

func (s *Service) Update(
	ctx context.Context,
	id access.Identity,
	appID string,
	req UpdateChatAppRequest,
) (*ChatApp, error) {
	app, err := s.manageable(ctx, id, appID, "update chat app")
	if err != nil {
		return nil, err
	}

	if req.IsAdminOnly != nil && *req.IsAdminOnly != app.IsAdminOnly {
		if err := access.Authorize(id, access.ActionCreateAdminOnlyApp); err != nil {
			denied(ctx, "chat_app.admin_only_denied", id, appID)
			return nil, fmt.Errorf("update chat app: %w", err)
		}
		app.IsAdminOnly = *req.IsAdminOnly
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("update chat app: name is required: %w", core.ErrInvalidInput)
		}
		app.Name = name
	}
	if req.Description != nil {
		app.Description = *req.Description
	}
	if req.Details != nil {
		app.Details = *req.Details
	}
	if req.URL != nil {
		url := strings.TrimSpace(*req.URL)
		if url == "" {
			return nil, fmt.Errorf("update chat app: url is required: %w", core.ErrInvalidInput)
		}
		app.URL = url
	}
	if req.IsVisibleToAll != nil {
		app.IsVisibleToAll = *req.IsVisibleToAll
	}

	typeIDs := app.GrantedTypeIDs()
	if req.UserTypeIDs != nil {
		typeIDs = dedupe(*req.UserTypeIDs)
	}

	if !app.IsVisibleToAll && len(typeIDs) == 0 {
		return nil, fmt.Errorf(
			"update chat app: at least one user type is required unless visible to all: %w",
			core.ErrInvalidInput,
		)
	}

	if err := s.requireTypes(ctx, typeIDs); err != nil {
		return nil, fmt.Errorf("update chat app: %w", err)
	}

	if err := s.repo.Update(ctx, app, typeIDs); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "chat app updated",
		"chat_app_id", app.ID,
		"actor_id", id.UserID,
	)

	return s.repo.GetByID(ctx, app.ID)
}

func (s *Service) Delete(ctx context.Context, id access.Identity, appID string) error {
	if _, err := s.manageable(ctx, id, appID, "delete chat app"); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, appID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "chat app deleted",
		"chat_app_id", appID,
		"actor_id", id.UserID,
	)

	return nil
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	return s.repo.Counts(ctx)
}

// manageable loads the app and applies the edit/delete guard. An app the
// caller can neither manage nor see is reported as NotFound.
func (s *Service) manageable(
	ctx context.Context,
	id access.Identity,
	appID, op string,
) (*ChatApp, error) {
	if err := access.Authorize(id, access.ActionCreateApp); err != nil {
		denied(ctx, "chat_app.manage_denied", id, appID)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app, err := s.repo.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}

	attrs := app.Attributes()
	if !access.CanManage(id, attrs) {
		denied(ctx, "chat_app.manage_denied", id, appID)
		if !access.IsVisible(id, attrs) {
			return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: not the creator: %w", op, core.ErrForbidden)
	}

	return app, nil
}

func (s *Service) insert(
	ctx context.Context,
	id access.Identity,
	app *ChatApp,
	typeIDs []string,
) (*ChatApp, error) {
	if app.Name == "" {
		return nil, fmt.Errorf("create chat app: name is required: %w", core.ErrInvalidInput)
	}
	if app.URL == "" {
		return nil, fmt.Errorf("create chat app: url is required: %w", core.ErrInvalidInput)
	}

	if err := s.requireTypes(ctx, typeIDs); err != nil {
		return nil, fmt.Errorf("create chat app: %w", err)
	}

	if err := s.repo.Create(ctx, app, typeIDs); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "chat app created",
		"chat_app_id", app.ID,
		"admin_only", app.IsAdminOnly,
		"actor_id", id.UserID,
	)

	return s.repo.GetByID(ctx, app.ID)
}

func (s *Service) requireTypes(ctx context.Context, typeIDs []string) error {
	for _, typeID := range typeIDs {
		if strings.TrimSpace(typeID) == "" {
			return fmt.Errorf("user type id must not be empty: %w", core.ErrInvalidInput)
		}
	}

	missing, err := s.types.FindMissing(ctx, typeIDs)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf(
			"unknown user types %s: %w",
			strings.Join(missing, ", "),
			core.ErrInvalidInput,
		)
	}

	return nil
}

func visibleTo(id access.Identity, apps []ChatApp) []ChatApp {
	out := make([]ChatApp, 0, len(apps))
	for i := range apps {
		if access.IsVisible(id, apps[i].Attributes()) {
			out = append(out, apps[i])
		}
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func denied(ctx context.Context, event string, id access.Identity, appID string) {
	core.SpanEvent(ctx, event,
		attribute.String("user.id", id.UserID),
		attribute.String("user.role", id.Role.String()),
		attribute.String("chat_app.id", appID),
	)
}
