// AngelaMos | 2026
// service_test.go

package feedback

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

type fakeRepo struct {
	items map[string]*Feedback
	last  ListParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*Feedback)}
}

func (r *fakeRepo) Create(_ context.Context, f *Feedback) error {
	cp := *f
	r.items[f.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Feedback, error) {
	f, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("get feedback: %w", core.ErrNotFound)
	}
	cp := *f
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, params ListParams) ([]Feedback, int, error) {
	r.last = params
	var out []Feedback
	for _, f := range r.items {
		if params.Status != "" && string(f.Status) != params.Status {
			continue
		}
		out = append(out, *f)
	}
	return out, len(out), nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status Status) (*Feedback, error) {
	f, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("update feedback status: %w", core.ErrNotFound)
	}
	f.Status = status
	cp := *f
	return &cp, nil
}

func (r *fakeRepo) CountByStatus(context.Context) ([]StatusCount, error) {
	counts := make(map[Status]int)
	for _, f := range r.items {
		counts[f.Status]++
	}
	out := make([]StatusCount, 0, len(counts))
	for st, n := range counts {
		out = append(out, StatusCount{Status: st, Count: n})
	}
	return out, nil
}

var (
	superID = access.Identity{UserID: "root", Role: access.RoleSuperuser, UserTypeID: "ops"}
	adminID = access.Identity{UserID: "admin", Role: access.RoleAdmin, UserTypeID: "eng"}
)

func ptr(s string) *string { return &s }

func TestSubmit_Anonymous(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	f, err := svc.Submit(context.Background(), access.Identity{}, CreateFeedbackRequest{
		Content:    "  the coffee machine is broken  ",
		Department: ptr("   "),
		Name:       ptr(" Kim "),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if f.Status != StatusNew {
		t.Errorf("Status = %q, want NEW", f.Status)
	}
	if f.Content != "the coffee machine is broken" {
		t.Errorf("Content = %q", f.Content)
	}
	if f.Department != nil {
		t.Errorf("Department = %q, want nil for blank input", *f.Department)
	}
	if f.Name == nil || *f.Name != "Kim" {
		t.Errorf("Name = %v, want Kim", f.Name)
	}
	if len(repo.items) != 1 {
		t.Errorf("stored %d items, want 1", len(repo.items))
	}
}

func TestSubmit_BlankContent(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Submit(context.Background(), access.Identity{}, CreateFeedbackRequest{Content: "   "})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("Submit(blank) = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateStatus_RequiresSuperuser(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	f, err := svc.Submit(ctx, adminID, CreateFeedbackRequest{Content: "more monitors"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, adminID, f.ID, "ACCEPTED"); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("UpdateStatus(admin) = %v, want ErrForbidden", err)
	}
	if _, err := svc.UpdateStatus(ctx, access.Identity{}, f.ID, "ACCEPTED"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("UpdateStatus(anonymous) = %v, want ErrUnauthorized", err)
	}
	if repo.items[f.ID].Status != StatusNew {
		t.Fatalf("status changed by a rejected caller")
	}

	updated, err := svc.UpdateStatus(ctx, superID, f.ID, "in_review")
	if err != nil {
		t.Fatalf("UpdateStatus(superuser): %v", err)
	}
	if updated.Status != StatusInReview {
		t.Errorf("Status = %q, want IN_REVIEW", updated.Status)
	}

	// Any transition is allowed, backwards included.
	if _, err := svc.UpdateStatus(ctx, superID, f.ID, "NEW"); err != nil {
		t.Errorf("UpdateStatus back to NEW: %v", err)
	}
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.UpdateStatus(context.Background(), superID, "any", "ARCHIVED")
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("UpdateStatus(ARCHIVED) = %v, want ErrInvalidInput", err)
	}
}

func TestList(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if _, _, err := svc.List(ctx, adminID, ListParams{}); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("List(admin) = %v, want ErrForbidden", err)
	}

	if _, _, err := svc.List(ctx, superID, ListParams{Status: "accepted"}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.last.Status != "ACCEPTED" {
		t.Errorf("status filter = %q, want normalized ACCEPTED", repo.last.Status)
	}

	if _, _, err := svc.List(ctx, superID, ListParams{Status: "bogus"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("List(bogus status) = %v, want ErrInvalidInput", err)
	}
}

func TestCountByStatus_FillsZeros(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	for range 3 {
		if _, err := svc.Submit(ctx, access.Identity{}, CreateFeedbackRequest{Content: "x"}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	counts, err := svc.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if len(counts) != len(Statuses) {
		t.Errorf("got %d statuses, want %d", len(counts), len(Statuses))
	}
	if counts[StatusNew] != 3 {
		t.Errorf("NEW = %d, want 3", counts[StatusNew])
	}
	if counts[StatusCompleted] != 0 {
		t.Errorf("COMPLETED = %d, want 0", counts[StatusCompleted])
	}
}
