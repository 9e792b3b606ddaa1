package producer

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/mm2d3d/lottery-platform/internal/draw-service/ws"
	"github.com/mm2d3d/lottery-platform/pkg/contracts/events"
)

// Publisher fans a published result out to Kafka (the settlement-worker
// consumes it) and to the Redis pub/sub channel feeding the local
// websocket hub.
type Publisher struct {
	Writer  *kafka.Writer
	Redis   *redis.Client
	Channel string
}

func New(w *kafka.Writer, rdb *redis.Client, channel string) *Publisher {
	return &Publisher{Writer: w, Redis: rdb, Channel: channel}
}

// PublishResultPublished must succeed on the Kafka leg; without it no
// settlement happens. The Redis leg is best effort.
func (p *Publisher) PublishResultPublished(ctx context.Context, e events.ResultPublished) error {
	b, _ := json.Marshal(e)

	if err := p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.ResultID), Value: b}); err != nil {
		return err
	}

	if p.Redis != nil {
		env, _ := json.Marshal(ws.ResultUpdate{GameType: e.GameType, Payload: e})
		_ = p.Redis.Publish(ctx, p.Channel, env).Err()
	}
	return nil
}
