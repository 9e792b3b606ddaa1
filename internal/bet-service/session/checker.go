package session

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// Checker answers whether a draw session is currently accepting bets.
// It reads the flag draw-service keeps in Redis and falls back to
// Postgres when the cache has no answer.
type Checker struct {
	Rdb *redis.Client
	DB  *sql.DB
}

func NewChecker(rdb *redis.Client, db *sql.DB) *Checker {
	return &Checker{Rdb: rdb, DB: db}
}

// key format shared with draw-service: "session:open:<game>:<date>:<session>"
func key(game, drawDate, session string) string {
	return "session:open:" + game + ":" + drawDate + ":" + session
}

func (c *Checker) IsOpen(ctx context.Context, game, drawDate, session string) (bool, error) {
	val, err := c.Rdb.Get(ctx, key(game, drawDate, session)).Result()
	if err == nil {
		return val == "1", nil
	}
	if err != redis.Nil {
		// cache trouble is not a reason to reject bets; use the source of truth
		return c.fromDB(ctx, game, drawDate, session)
	}

	open, err := c.fromDB(ctx, game, drawDate, session)
	if err != nil {
		return false, err
	}

	// backfill, best effort
	flag := "0"
	if open {
		flag = "1"
	}
	_ = c.Rdb.Set(ctx, key(game, drawDate, session), flag, time.Minute).Err()

	return open, nil
}

func (c *Checker) fromDB(ctx context.Context, game, drawDate, session string) (bool, error) {
	var n int
	err := c.DB.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM lottery_sessions
		WHERE game_type=$1 AND draw_date=$2 AND draw_session=$3
		  AND status='OPEN' AND closes_at > NOW()`,
		game, drawDate, session,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
