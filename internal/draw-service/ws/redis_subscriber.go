package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StartRedisSubscriber listens on the Redis Pub/Sub channel where
// result publications are broadcast and fans every message out to the
// subscribed WebSocket clients via the Hub. The settlement-worker also
// publishes per-bet settlement events on the same channel.
func StartRedisSubscriber(ctx context.Context, log *zap.Logger, r *redis.Client, channel string, hub *Hub) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg := <-ch:
				if msg == nil {
					continue
				}
				var upd ResultUpdate
				if err := json.Unmarshal([]byte(msg.Payload), &upd); err != nil {
					log.Warn("ws subscriber unmarshal error", zap.Error(err))
					continue
				}
				hub.Broadcast(upd)
			}
		}
	}()
}
