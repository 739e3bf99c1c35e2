package sessioncache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pointpool/internal/server/auth"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix   = "pointpool:session:"
	tombstonePrefix = "pointpool:revoked:"
)

// setUnlessRevoked writes the entry only while no tombstone exists, in one
// server-side step.
var setUnlessRevoked = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

type entry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Redis struct {
	rdb          redis.UniversalClient
	prefix       string
	tombstoneTTL time.Duration
}

// NewRedis returns a cache over rdb. tombstoneTTL must be at least the
// longest ttl passed to Set.
func NewRedis(rdb redis.UniversalClient, tombstoneTTL time.Duration) *Redis {
	return &Redis{rdb: rdb, prefix: defaultPrefix, tombstoneTTL: tombstoneTTL}
}

func (c *Redis) key(t auth.SessionToken) string {
	return c.prefix + hex.EncodeToString(t[:])
}

func (c *Redis) tombstone(t auth.SessionToken) string {
	return tombstonePrefix + hex.EncodeToString(t[:])
}

func (c *Redis) Get(ctx context.Context, token auth.SessionToken) (*models.User, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// unreadable entries are dropped and treated as a miss
		_ = c.rdb.Del(ctx, c.key(token)).Err()
		return nil, false, nil
	}
	return &models.User{ID: e.ID, Name: e.Name, CreatedAt: e.CreatedAt}, true, nil
}

func (c *Redis) Set(ctx context.Context, token auth.SessionToken, user *models.User, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(entry{ID: user.ID, Name: user.Name, CreatedAt: user.CreatedAt})
	if err != nil {
		return err
	}
	keys := []string{c.key(token), c.tombstone(token)}
	if err := setUnlessRevoked.Run(ctx, c.rdb, keys, raw, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete evicts the entry and leaves a tombstone for tombstoneTTL.
func (c *Redis) Delete(ctx context.Context, token auth.SessionToken) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.tombstone(token), 1, c.tombstoneTTL)
		pipe.Del(ctx, c.key(token))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
