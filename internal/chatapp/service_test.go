// AngelaMos | 2026
// service_test.go

package chatapp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"testing"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

// fakeRepo ignores ListFilter.Viewer so the service's own visibility pass
// is what the tests observe.
type fakeRepo struct {
	apps map[string]*ChatApp
}

func newFakeRepo(apps ...*ChatApp) *fakeRepo {
	r := &fakeRepo{apps: make(map[string]*ChatApp)}
	for _, a := range apps {
		r.apps[a.ID] = a
	}
	return r
}

func grants(ids ...string) []GrantedType {
	out := make([]GrantedType, 0, len(ids))
	for _, id := range ids {
		out = append(out, GrantedType{ID: id, Name: id})
	}
	return out
}

func (r *fakeRepo) Create(_ context.Context, app *ChatApp, typeIDs []string) error {
	stored := *app
	stored.UserTypes = grants(typeIDs...)
	r.apps[app.ID] = &stored
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*ChatApp, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, fmt.Errorf("get chat app: %w", core.ErrNotFound)
	}
	cp := *app
	cp.UserTypes = slices.Clone(app.UserTypes)
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, f ListFilter) ([]ChatApp, error) {
	var out []ChatApp
	for _, app := range r.apps {
		if f.AdminOnly && !app.IsAdminOnly {
			continue
		}
		if f.CreatedByID != "" && app.CreatedByID != f.CreatedByID {
			continue
		}
		if f.UserTypeID != "" && !slices.Contains(app.GrantedTypeIDs(), f.UserTypeID) {
			continue
		}
		out = append(out, *app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, app *ChatApp, typeIDs []string) error {
	if _, ok := r.apps[app.ID]; !ok {
		return fmt.Errorf("update chat app: %w", core.ErrNotFound)
	}
	stored := *app
	stored.UserTypes = grants(typeIDs...)
	r.apps[app.ID] = &stored
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.apps[id]; !ok {
		return fmt.Errorf("delete chat app: %w", core.ErrNotFound)
	}
	delete(r.apps, id)
	return nil
}

func (r *fakeRepo) Counts(context.Context) (Counts, error) {
	var c Counts
	for _, app := range r.apps {
		c.Total++
		if app.IsAdminOnly {
			c.AdminOnly++
		}
	}
	return c, nil
}

type fakeTypes map[string]bool

func (f fakeTypes) FindMissing(_ context.Context, ids []string) ([]string, error) {
	var missing []string
	for _, id := range ids {
		if !f[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

var (
	userEng   = access.Identity{UserID: "u-eng", Role: access.RoleUser, UserTypeID: "eng"}
	adminEng  = access.Identity{UserID: "a-eng", Role: access.RoleAdmin, UserTypeID: "eng"}
	adminOps  = access.Identity{UserID: "a-ops", Role: access.RoleAdmin, UserTypeID: "ops"}
	superRoot = access.Identity{UserID: "root", Role: access.RoleSuperuser, UserTypeID: "ops"}
)

func catalog() *fakeRepo {
	return newFakeRepo(
		&ChatApp{ID: "public", Name: "Public", URL: "https://p", IsVisibleToAll: true, CreatedByID: "a-ops"},
		&ChatApp{ID: "eng-tool", Name: "Eng Tool", URL: "https://e", CreatedByID: "a-eng", UserTypes: grants("eng")},
		&ChatApp{ID: "ops-tool", Name: "Ops Tool", URL: "https://o", CreatedByID: "a-ops", UserTypes: grants("ops")},
		&ChatApp{ID: "eng-admin", Name: "Eng Admin", URL: "https://ea", IsAdminOnly: true, CreatedByID: "root", UserTypes: grants("eng")},
		&ChatApp{ID: "all-admin", Name: "All Admin", URL: "https://aa", IsAdminOnly: true, IsVisibleToAll: true, CreatedByID: "root"},
	)
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, fakeTypes{"eng": true, "ops": true, "sales": true})
}

func ids(apps []ChatApp) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ID)
	}
	sort.Strings(out)
	return out
}

func TestList_VisibilityPerRole(t *testing.T) {
	svc := newTestService(catalog())

	tests := []struct {
		name string
		id   access.Identity
		want []string
	}{
		{"user sees public and own type, no admin-only", userEng, []string{"eng-tool", "public"}},
		{"admin sees admin-only for own type", adminEng, []string{"all-admin", "eng-admin", "eng-tool", "public"}},
		{"admin of other type", adminOps, []string{"all-admin", "ops-tool", "public"}},
		{"superuser sees everything", superRoot, []string{"all-admin", "eng-admin", "eng-tool", "ops-tool", "public"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, err := svc.List(context.Background(), tt.id, ListParams{})
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if got := ids(apps); !slices.Equal(got, tt.want) {
				t.Errorf("List = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestList_Filters(t *testing.T) {
	svc := newTestService(catalog())
	ctx := context.Background()

	apps, err := svc.List(ctx, superRoot, ListParams{UserTypeID: "eng"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := ids(apps); !slices.Equal(got, []string{"eng-admin", "eng-tool"}) {
		t.Errorf("List(userTypeId=eng) = %v", got)
	}

	apps, err = svc.List(ctx, superRoot, ListParams{UserTypeID: "all"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(apps) != 5 {
		t.Errorf("List(userTypeId=all) returned %d apps, want 5", len(apps))
	}

	apps, err = svc.List(ctx, adminOps, ListParams{Mine: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := ids(apps); !slices.Equal(got, []string{"ops-tool", "public"}) {
		t.Errorf("List(mine) = %v", got)
	}
}

func TestList_RequiresIdentity(t *testing.T) {
	svc := newTestService(catalog())

	_, err := svc.List(context.Background(), access.Identity{}, ListParams{})
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("List(anonymous) = %v, want ErrUnauthorized", err)
	}
}

func TestGet_MasksInvisibleAsNotFound(t *testing.T) {
	svc := newTestService(catalog())
	ctx := context.Background()

	if _, err := svc.Get(ctx, userEng, "eng-admin"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get(admin-only as user) = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, userEng, "ops-tool"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get(other type) = %v, want ErrNotFound", err)
	}
	if _, err := svc.Get(ctx, userEng, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}

	app, err := svc.Get(ctx, adminEng, "eng-admin")
	if err != nil {
		t.Fatalf("Get(admin-only as admin) = %v", err)
	}
	if app.ID != "eng-admin" {
		t.Errorf("Get returned %q", app.ID)
	}
}

func TestCreate_RoleGates(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()
	req := CreateChatAppRequest{Name: "Tool", URL: "https://tool", UserTypeIDs: []string{}}

	if _, err := svc.Create(ctx, userEng, req); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Create(user) = %v, want ErrForbidden", err)
	}

	adminOnly := req
	adminOnly.IsAdminOnly = true
	if _, err := svc.Create(ctx, adminEng, adminOnly); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Create(admin, adminOnly) = %v, want ErrForbidden", err)
	}

	if _, err := svc.Create(ctx, superRoot, adminOnly); err != nil {
		t.Errorf("Create(superuser, adminOnly) = %v, want nil", err)
	}
}

func TestCreate_DefaultsGrantToCallerType(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	app, err := svc.Create(context.Background(), adminEng, CreateChatAppRequest{
		Name:        "  Tool  ",
		URL:         "https://tool",
		UserTypeIDs: []string{},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if app.Name != "Tool" {
		t.Errorf("Name = %q, want trimmed", app.Name)
	}
	if app.CreatedByID != adminEng.UserID {
		t.Errorf("CreatedByID = %q, want %q", app.CreatedByID, adminEng.UserID)
	}
	if got := app.GrantedTypeIDs(); !slices.Equal(got, []string{"eng"}) {
		t.Errorf("grants = %v, want [eng]", got)
	}
}

func TestCreate_UnknownUserType(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Create(context.Background(), adminEng, CreateChatAppRequest{
		Name:        "Tool",
		URL:         "https://tool",
		UserTypeIDs: []string{"eng", "marketing"},
	})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Create(unknown type) = %v, want ErrInvalidInput", err)
	}
}

func TestCreate_DedupesGrants(t *testing.T) {
	svc := newTestService(newFakeRepo())

	app, err := svc.Create(context.Background(), superRoot, CreateChatAppRequest{
		Name:        "Tool",
		URL:         "https://tool",
		UserTypeIDs: []string{"eng", " eng", "sales"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := app.GrantedTypeIDs(); !slices.Equal(got, []string{"eng", "sales"}) {
		t.Errorf("grants = %v, want [eng sales]", got)
	}
}

func TestCreateAdminApp(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()
	req := CreateAdminAppRequest{Name: "Board", URL: "https://board"}

	if _, err := svc.CreateAdminApp(ctx, adminEng, req); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("CreateAdminApp(admin) = %v, want ErrForbidden", err)
	}

	app, err := svc.CreateAdminApp(ctx, superRoot, req)
	if err != nil {
		t.Fatalf("CreateAdminApp(superuser): %v", err)
	}
	if !app.IsAdminOnly || app.IsVisibleToAll {
		t.Errorf("flags = adminOnly:%v visibleToAll:%v", app.IsAdminOnly, app.IsVisibleToAll)
	}
	if got := app.GrantedTypeIDs(); !slices.Equal(got, []string{"ops"}) {
		t.Errorf("grants = %v, want caller type [ops]", got)
	}
}

func TestUpdate_OwnershipAndMasking(t *testing.T) {
	svc := newTestService(catalog())
	ctx := context.Background()
	name := "Renamed"
	req := UpdateChatAppRequest{Name: &name}

	// Visible but owned by another admin.
	if _, err := svc.Update(ctx, adminEng, "public", req); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Update(other admin's visible app) = %v, want ErrForbidden", err)
	}

	// Neither visible nor owned.
	if _, err := svc.Update(ctx, adminEng, "ops-tool", req); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update(invisible app) = %v, want ErrNotFound", err)
	}

	if _, err := svc.Update(ctx, userEng, "eng-tool", req); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Update(user) = %v, want ErrForbidden", err)
	}

	app, err := svc.Update(ctx, adminEng, "eng-tool", req)
	if err != nil {
		t.Fatalf("Update(own app) = %v", err)
	}
	if app.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", app.Name)
	}
	if got := app.GrantedTypeIDs(); !slices.Equal(got, []string{"eng"}) {
		t.Errorf("grants changed to %v on a name-only update", got)
	}
}

func TestUpdate_AdminOnlyFlagRequiresSuperuser(t *testing.T) {
	svc := newTestService(catalog())
	ctx := context.Background()
	flag := true

	_, err := svc.Update(ctx, adminEng, "eng-tool", UpdateChatAppRequest{IsAdminOnly: &flag})
	if !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Update(admin sets adminOnly) = %v, want ErrForbidden", err)
	}

	app, err := svc.Update(ctx, superRoot, "eng-tool", UpdateChatAppRequest{IsAdminOnly: &flag})
	if err != nil {
		t.Fatalf("Update(superuser sets adminOnly) = %v", err)
	}
	if !app.IsAdminOnly {
		t.Error("IsAdminOnly not applied")
	}
}

func TestUpdate_EmptyGrantsNeedVisibleToAll(t *testing.T) {
	svc := newTestService(catalog())
	ctx := context.Background()
	empty := []string{}

	_, err := svc.Update(ctx, adminEng, "eng-tool", UpdateChatAppRequest{UserTypeIDs: &empty})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Update(no grants, not visible to all) = %v, want ErrInvalidInput", err)
	}

	visible := true
	app, err := svc.Update(ctx, adminEng, "eng-tool", UpdateChatAppRequest{
		UserTypeIDs:    &empty,
		IsVisibleToAll: &visible,
	})
	if err != nil {
		t.Fatalf("Update(visible to all, no grants) = %v", err)
	}
	if len(app.UserTypes) != 0 {
		t.Errorf("grants = %v, want none", app.GrantedTypeIDs())
	}
}

func TestDelete(t *testing.T) {
	repo := catalog()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.Delete(ctx, adminEng, "public"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("Delete(other admin's app) = %v, want ErrForbidden", err)
	}

	if err := svc.Delete(ctx, adminEng, "eng-tool"); err != nil {
		t.Fatalf("Delete(own app) = %v", err)
	}
	if _, ok := repo.apps["eng-tool"]; ok {
		t.Error("app still stored after delete")
	}

	if err := svc.Delete(ctx, superRoot, "ops-tool"); err != nil {
		t.Errorf("Delete(superuser) = %v", err)
	}
}

func TestListAdminApps(t *testing.T) {
	svc := newTestService(catalog())
	ctx := context.Background()

	if _, err := svc.ListAdminApps(ctx, userEng); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("ListAdminApps(user) = %v, want ErrForbidden", err)
	}

	apps, err := svc.ListAdminApps(ctx, adminOps)
	if err != nil {
		t.Fatalf("ListAdminApps(admin): %v", err)
	}
	if got := ids(apps); !slices.Equal(got, []string{"all-admin"}) {
		t.Errorf("ListAdminApps(admin ops) = %v, want [all-admin]", got)
	}

	apps, err = svc.ListAdminApps(ctx, superRoot)
	if err != nil {
		t.Fatalf("ListAdminApps(superuser): %v", err)
	}
	if len(apps) != 5 {
		t.Errorf("ListAdminApps(superuser) returned %d apps, want 5", len(apps))
	}
}

func TestCreate_MissingUserTypeIDs(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), adminEng, CreateChatAppRequest{Name: "Tool", URL: "https://tool"})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Create(nil userTypeIds) = %v, want ErrInvalidInput", err)
	}
	if len(repo.apps) != 0 {
		t.Errorf("stored %d apps, want none", len(repo.apps))
	}
}

func TestUpdate_ReplacesGrantsExactly(t *testing.T) {
	svc := newTestService(catalog())
	ctx := context.Background()
	next := []string{"ops", "sales"}

	if _, err := svc.Update(ctx, adminEng, "eng-tool", UpdateChatAppRequest{UserTypeIDs: &next}); err != nil {
		t.Fatalf("Update(grants) = %v", err)
	}

	app, err := svc.Get(ctx, superRoot, "eng-tool")
	if err != nil {
		t.Fatalf("Get after update = %v", err)
	}
	got := app.GrantedTypeIDs()
	slices.Sort(got)
	if !slices.Equal(got, []string{"ops", "sales"}) {
		t.Errorf("grants after re-fetch = %v, want [ops sales]", got)
	}
}

func TestUpdate_BlankURLRejected(t *testing.T) {
	repo := catalog()
	svc := newTestService(repo)
	blank := "   "

	_, err := svc.Update(context.Background(), adminEng, "eng-tool", UpdateChatAppRequest{URL: &blank})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Update(blank url) = %v, want ErrInvalidInput", err)
	}
	if got := repo.apps["eng-tool"].URL; got != "https://e" {
		t.Errorf("stored url = %q, want unchanged", got)
	}
}
