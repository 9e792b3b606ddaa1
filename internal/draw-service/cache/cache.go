package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyResult(game, drawDate, session string) string {
	return "result:" + game + ":" + drawDate + ":" + session
}

// key format shared with bet-service: "session:open:<game>:<date>:<session>"
func keySessionOpen(game, drawDate, session string) string {
	return "session:open:" + game + ":" + drawDate + ":" + session
}

func (c *Cache) GetResult(ctx context.Context, game, drawDate, session string, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyResult(game, drawDate, session)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

// SetResult caches a published result. Results are immutable, so a long
// TTL is safe; it only bounds memory.
func (c *Cache) SetResult(ctx context.Context, game, drawDate, session string, v any) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyResult(game, drawDate, session), b, 24*time.Hour).Err()
}

// SetSessionOpen maintains the flag bet-service reads before accepting a
// bet. "1" means open; the TTL expires the flag at the betting deadline
// so a stale OPEN can never outlive the draw.
func (c *Cache) SetSessionOpen(ctx context.Context, game, drawDate, session string, until time.Duration) error {
	if until <= 0 {
		return c.SetSessionClosed(ctx, game, drawDate, session)
	}
	return c.R.Set(ctx, keySessionOpen(game, drawDate, session), "1", until).Err()
}

func (c *Cache) SetSessionClosed(ctx context.Context, game, drawDate, session string) error {
	return c.R.Set(ctx, keySessionOpen(game, drawDate, session), "0", time.Hour).Err()
}
