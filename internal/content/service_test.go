// AngelaMos | 2026
// service_test.go

package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/config"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

type call struct {
	endpoint  string
	contentID string
	query     url.Values
}

type fakeSource struct {
	body  string
	err   error
	calls []call
}

func (f *fakeSource) Get(_ context.Context, endpoint, contentID string, query url.Values) ([]byte, error) {
	f.calls = append(f.calls, call{endpoint, contentID, query})
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.body), nil
}

var staff = access.Identity{UserID: "u1", Role: access.RoleUser, UserTypeID: "eng"}

func TestListNews_PublicationWindowFilter(t *testing.T) {
	src := &fakeSource{body: `{"contents":[{"id":"n1","title":"Hello"}],"totalCount":1,"offset":0,"limit":10}`}
	svc := NewService(src)
	svc.now = func() time.Time { return time.Date(2026, 4, 1, 9, 30, 45, 0, time.UTC) }

	page, err := svc.ListNews(context.Background(), staff, Query{Important: true, Category: "hr"})
	if err != nil {
		t.Fatalf("ListNews: %v", err)
	}
	if len(page.Contents) != 1 || page.Contents[0].ID != "n1" {
		t.Errorf("contents = %+v", page.Contents)
	}

	if len(src.calls) != 1 {
		t.Fatalf("source called %d times, want 1", len(src.calls))
	}
	q := src.calls[0].query
	want := "publishedDate[less_than]2026-04-01T09:30:00Z[and]" +
		"endDate[greater_than]2026-04-01T09:30:00Z[and]" +
		"important[equals]true[and]category[contains]hr"
	if got := q.Get("filters"); got != want {
		t.Errorf("filters = %q, want %q", got, want)
	}
	if q.Get("limit") != "10" {
		t.Errorf("limit = %q, want default 10", q.Get("limit"))
	}
	if q.Get("orders") != "-publishedAt" {
		t.Errorf("orders = %q", q.Get("orders"))
	}
}

func TestListBlogs_ClampsLimit(t *testing.T) {
	src := &fakeSource{body: `{"contents":[],"totalCount":0}`}
	svc := NewService(src)

	if _, err := svc.ListBlogs(context.Background(), staff, Query{Limit: 500, Offset: -3}); err != nil {
		t.Fatalf("ListBlogs: %v", err)
	}

	q := src.calls[0].query
	if q.Get("limit") != "100" || q.Get("offset") != "0" {
		t.Errorf("limit/offset = %s/%s, want 100/0", q.Get("limit"), q.Get("offset"))
	}
	if q.Has("filters") {
		t.Errorf("unexpected filters %q", q.Get("filters"))
	}
}

func TestContent_RequiresIdentity(t *testing.T) {
	svc := NewService(&fakeSource{body: `{}`})
	ctx := context.Background()

	if _, err := svc.ListNews(ctx, access.Identity{}, Query{}); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("ListNews(anonymous) = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.GetBlog(ctx, access.Identity{}, "b1"); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("GetBlog(anonymous) = %v, want ErrUnauthorized", err)
	}
}

func TestGet_Errors(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&fakeSource{body: `{}`})
	if _, err := svc.GetNews(ctx, staff, "  "); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("GetNews(blank) = %v, want ErrInvalidInput", err)
	}

	svc = NewService(&fakeSource{body: `not json`})
	if _, err := svc.GetNews(ctx, staff, "n1"); !errors.Is(err, core.ErrUpstream) {
		t.Errorf("GetNews(bad json) = %v, want ErrUpstream", err)
	}

	svc = NewService(&fakeSource{err: fmt.Errorf("content: %w", core.ErrNotFound)})
	if _, err := svc.GetBlog(ctx, staff, "gone"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetBlog(missing) = %v, want ErrNotFound", err)
	}
}

func TestMicroCMS_Get(t *testing.T) {
	var gotKey, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-MICROCMS-API-KEY")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		switch {
		case strings.HasSuffix(r.URL.Path, "/missing"):
			w.WriteHeader(http.StatusNotFound)
		case strings.HasSuffix(r.URL.Path, "/broken"):
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(`{"id":"n1"}`))
		}
	}))
	defer srv.Close()

	src := NewMicroCMS(config.ContentConfig{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: time.Second})
	ctx := context.Background()

	body, err := src.Get(ctx, EndpointNews, "n1", url.Values{"fields": {"id"}})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(body) != `{"id":"n1"}` {
		t.Errorf("body = %s", body)
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotPath != "/news/n1" || gotQuery != "fields=id" {
		t.Errorf("request = %s?%s", gotPath, gotQuery)
	}

	if _, err := src.Get(ctx, EndpointNews, "missing", nil); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
	if _, err := src.Get(ctx, EndpointBlog, "broken", nil); !errors.Is(err, core.ErrUpstream) {
		t.Errorf("Get(502) = %v, want ErrUpstream", err)
	}
}
