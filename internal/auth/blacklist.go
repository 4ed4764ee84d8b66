// AngelaMos | 2026
// blacklist.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/staff-portal/internal/core"
)

// Blacklist holds the ids of access tokens revoked before their expiry.
type Blacklist interface {
	Add(ctx context.Context, jti string, until time.Time) error
	Contains(ctx context.Context, jti string) (bool, error)
}

type redisBlacklist struct {
	rdb *core.Redis
}

func NewRedisBlacklist(rdb *core.Redis) Blacklist {
	return &redisBlacklist{rdb: rdb}
}

func (b *redisBlacklist) Add(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}

	if err := b.rdb.Client.Set(ctx, b.rdb.Key("blacklist", jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (b *redisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	exists, err := b.rdb.Client.Exists(ctx, b.rdb.Key("blacklist", jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}
