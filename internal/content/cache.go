// AngelaMos | 2026
// cache.go

package content

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

type cachedSource struct {
	next Source
	rdb  *core.Redis
	ttl  time.Duration
}

// NewCachedSource serves repeated requests from redis. Redis failures are
// logged and the request falls through to next.
func NewCachedSource(next Source, rdb *core.Redis, ttl time.Duration) Source {
	return &cachedSource{next: next, rdb: rdb, ttl: ttl}
}

func (c *cachedSource) Get(
	ctx context.Context,
	endpoint, contentID string,
	query url.Values,
) ([]byte, error) {
	key := c.rdb.Key("content", endpoint, contentID, query.Encode())

	cached, err := c.rdb.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		return cached, nil
	case !errors.Is(err, redis.Nil):
		slog.WarnContext(ctx, "content cache read failed", "error", err)
	}

	body, err := c.next.Get(ctx, endpoint, contentID, query)
	if err != nil {
		return nil, err
	}

	if err := c.rdb.Client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "content cache write failed", "error", err)
	}

	return body, nil
}
