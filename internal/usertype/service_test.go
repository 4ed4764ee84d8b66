// AngelaMos | 2026
// service_test.go

package usertype

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

type fakeRepo struct {
	types map[string]*UserType
	usage map[string]Usage
}

func newFakeRepo(types ...*UserType) *fakeRepo {
	r := &fakeRepo{types: make(map[string]*UserType), usage: make(map[string]Usage)}
	for _, t := range types {
		r.types[t.ID] = t
	}
	return r
}

func (r *fakeRepo) byName(name string) *UserType {
	for _, t := range r.types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (r *fakeRepo) Create(_ context.Context, t *UserType) error {
	if r.byName(t.Name) != nil {
		return fmt.Errorf("create user type: %w", core.ErrDuplicateKey)
	}
	cp := *t
	r.types[t.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*UserType, error) {
	t, ok := r.types[id]
	if !ok {
		return nil, fmt.Errorf("get user type: %w", core.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) List(context.Context) ([]UserType, error) {
	out := make([]UserType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, t *UserType) error {
	if other := r.byName(t.Name); other != nil && other.ID != t.ID {
		return fmt.Errorf("update user type: %w", core.ErrDuplicateKey)
	}
	cp := *t
	r.types[t.ID] = &cp
	return nil
}

func (r *fakeRepo) Usage(_ context.Context, id string) (Usage, error) {
	return r.usage[id], nil
}

func (r *fakeRepo) DeleteUnused(_ context.Context, id string) error {
	if _, ok := r.types[id]; !ok {
		return fmt.Errorf("delete user type: %w", core.ErrNotFound)
	}
	if r.usage[id].InUse() {
		return fmt.Errorf("delete user type: %w", core.ErrResourceInUse)
	}
	delete(r.types, id)
	return nil
}

func (r *fakeRepo) FindMissing(_ context.Context, ids []string) ([]string, error) {
	var missing []string
	for _, id := range ids {
		if _, ok := r.types[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *fakeRepo) EnsureByName(_ context.Context, t *UserType) error {
	if existing := r.byName(t.Name); existing != nil {
		*t = *existing
		return nil
	}
	cp := *t
	r.types[t.ID] = &cp
	return nil
}

func (r *fakeRepo) Count(context.Context) (int, error) {
	return len(r.types), nil
}

var (
	superID = access.Identity{UserID: "root", Role: access.RoleSuperuser, UserTypeID: "ops"}
	adminID = access.Identity{UserID: "admin", Role: access.RoleAdmin, UserTypeID: "eng"}
	userID  = access.Identity{UserID: "user", Role: access.RoleUser, UserTypeID: "eng"}
)

func TestList_AdminSectionOnly(t *testing.T) {
	svc := NewService(newFakeRepo(&UserType{ID: "eng", Name: "Engineering"}))
	ctx := context.Background()

	if _, err := svc.List(ctx, userID); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("List(user) = %v, want ErrForbidden", err)
	}

	types, err := svc.List(ctx, adminID)
	if err != nil {
		t.Fatalf("List(admin): %v", err)
	}
	if len(types) != 1 {
		t.Errorf("List returned %d types, want 1", len(types))
	}
}

func TestCreate(t *testing.T) {
	repo := newFakeRepo(&UserType{ID: "eng", Name: "Engineering"})
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, adminID, CreateUserTypeRequest{Name: "Sales"}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Create(admin) = %v, want ErrForbidden", err)
	}

	if _, err := svc.Create(ctx, superID, CreateUserTypeRequest{Name: "   "}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Create(blank) = %v, want ErrInvalidInput", err)
	}

	if _, err := svc.Create(ctx, superID, CreateUserTypeRequest{Name: " Engineering "}); !errors.Is(err, core.ErrDuplicateKey) {
		t.Errorf("Create(duplicate) = %v, want ErrDuplicateKey", err)
	}

	created, err := svc.Create(ctx, superID, CreateUserTypeRequest{Name: " Sales "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Name != "Sales" || created.ID == "" {
		t.Errorf("created = %+v", created)
	}

	fetched, err := svc.Get(ctx, superID, created.ID)
	if err != nil {
		t.Fatalf("Get(%s) after create: %v", created.ID, err)
	}
	if fetched.Name != created.Name {
		t.Errorf("fetched name = %q, want %q", fetched.Name, created.Name)
	}
}

func TestDelete_RejectsTypeInUse(t *testing.T) {
	repo := newFakeRepo(
		&UserType{ID: "eng", Name: "Engineering"},
		&UserType{ID: "temp", Name: "Temp"},
	)
	repo.usage["eng"] = Usage{UserCount: 2}
	svc := NewService(repo)
	ctx := context.Background()

	if err := svc.Delete(ctx, superID, "eng"); !errors.Is(err, core.ErrResourceInUse) {
		t.Errorf("Delete(in use) = %v, want ErrResourceInUse", err)
	}
	if _, ok := repo.types["eng"]; !ok {
		t.Error("type in use was removed")
	}

	if err := svc.Delete(ctx, adminID, "temp"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Delete(admin) = %v, want ErrForbidden", err)
	}

	if err := svc.Delete(ctx, superID, "temp"); err != nil {
		t.Fatalf("Delete(unused): %v", err)
	}
	if err := svc.Delete(ctx, superID, "temp"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete(again) = %v, want ErrNotFound", err)
	}
}

func TestUsage(t *testing.T) {
	repo := newFakeRepo(&UserType{ID: "eng", Name: "Engineering"})
	repo.usage["eng"] = Usage{UserCount: 1, AppCount: 4}
	svc := NewService(repo)

	u, err := svc.Usage(context.Background(), superID, "eng")
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if u.UserCount != 1 || u.AppCount != 4 || !u.InUse() {
		t.Errorf("Usage = %+v", u)
	}

	if _, err := svc.Usage(context.Background(), superID, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Usage(missing) = %v, want ErrNotFound", err)
	}
}

func TestEnsure_ReturnsExisting(t *testing.T) {
	repo := newFakeRepo(&UserType{ID: "ops", Name: "SuperAdmin"})
	svc := NewService(repo)

	got, err := svc.Ensure(context.Background(), "SuperAdmin")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if got.ID != "ops" {
		t.Errorf("Ensure returned %q, want existing ops", got.ID)
	}
	if len(repo.types) != 1 {
		t.Errorf("stored %d types, want 1", len(repo.types))
	}
}
