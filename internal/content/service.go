// AngelaMos | 2026
// service.go

package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/carterperez-dev/staff-portal/internal/access"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

type Query struct {
	Limit     int
	Offset    int
	Category  string
	Important bool
}

func (q *Query) Normalize() {
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}

type Service struct {
	source Source
	now    func() time.Time
}

func NewService(source Source) *Service {
	return &Service{source: source, now: time.Now}
}

// ListNews returns news whose publication window contains the current
// minute, newest first.
func (s *Service) ListNews(
	ctx context.Context,
	id access.Identity,
	q Query,
) (*Page[News], error) {
	if err := id.Require(); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}

	now := s.now().UTC().Truncate(time.Minute).Format(time.RFC3339)
	filters := []string{
		"publishedDate[less_than]" + now,
		"endDate[greater_than]" + now,
	}
	if q.Important {
		filters = append(filters, "important[equals]true")
	}
	if q.Category != "" {
		filters = append(filters, "category[contains]"+q.Category)
	}

	var page Page[News]
	if err := s.list(ctx, EndpointNews, q, filters, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) GetNews(ctx context.Context, id access.Identity, newsID string) (*News, error) {
	if err := id.Require(); err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}

	var n News
	if err := s.get(ctx, EndpointNews, newsID, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Service) ListBlogs(
	ctx context.Context,
	id access.Identity,
	q Query,
) (*Page[Blog], error) {
	if err := id.Require(); err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}

	var filters []string
	if q.Category != "" {
		filters = append(filters, "category[contains]"+q.Category)
	}

	var page Page[Blog]
	if err := s.list(ctx, EndpointBlog, q, filters, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) GetBlog(ctx context.Context, id access.Identity, blogID string) (*Blog, error) {
	if err := id.Require(); err != nil {
		return nil, fmt.Errorf("get blog: %w", err)
	}

	var b Blog
	if err := s.get(ctx, EndpointBlog, blogID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) list(
	ctx context.Context,
	endpoint string,
	q Query,
	filters []string,
	dest any,
) error {
	q.Normalize()

	values := url.Values{}
	values.Set("limit", strconv.Itoa(q.Limit))
	values.Set("offset", strconv.Itoa(q.Offset))
	values.Set("orders", "-publishedAt")
	if len(filters) > 0 {
		values.Set("filters", strings.Join(filters, "[and]"))
	}

	body, err := s.source.Get(ctx, endpoint, "", values)
	if err != nil {
		return err
	}

	return decode(endpoint, body, dest)
}

func (s *Service) get(ctx context.Context, endpoint, contentID string, dest any) error {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return fmt.Errorf("%s: id is required: %w", endpoint, core.ErrInvalidInput)
	}

	body, err := s.source.Get(ctx, endpoint, contentID, nil)
	if err != nil {
		return err
	}

	return decode(endpoint, body, dest)
}

func decode(endpoint string, body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w: %w", endpoint, core.ErrUpstream, err)
	}
	return nil
}
