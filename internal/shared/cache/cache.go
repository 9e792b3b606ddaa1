package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens the Redis client used for session flags and the
// draw-update broadcast channel, pinging once so a wrong address is
// caught at startup.
func ConnectRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
