// AngelaMos | 2026
// source.go

package content

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/carterperez-dev/staff-portal/internal/config"
	"github.com/carterperez-dev/staff-portal/internal/core"
)

const (
	EndpointNews = "news"
	EndpointBlog = "blog"

	maxBodyBytes = 4 << 20
)

// Source returns raw JSON documents from a read-only content API. contentID
// is empty for list requests.
type Source interface {
	Get(ctx context.Context, endpoint, contentID string, query url.Values) ([]byte, error)
}

type microCMS struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewMicroCMS(cfg config.ContentConfig) Source {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.microcms.io/api/v1", cfg.ServiceDomain)
	}

	return &microCMS{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

func (m *microCMS) Get(
	ctx context.Context,
	endpoint, contentID string,
	query url.Values,
) ([]byte, error) {
	target := m.baseURL + "/" + url.PathEscape(endpoint)
	if contentID != "" {
		target += "/" + url.PathEscape(contentID)
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build content request: %w", err)
	}
	req.Header.Set("X-MICROCMS-API-KEY", m.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content %s: %w: %w", endpoint, core.ErrUpstream, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w: %w", endpoint, core.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("content %s/%s: %w", endpoint, contentID, core.ErrNotFound)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf(
			"content %s: status %d after %s: %w",
			endpoint,
			resp.StatusCode,
			time.Since(start),
			core.ErrUpstream,
		)
	}

	return body, nil
}
