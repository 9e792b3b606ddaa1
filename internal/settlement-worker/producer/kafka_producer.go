package producer

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/mm2d3d/lottery-platform/pkg/contracts/events"
)

// Publisher fans settlement events out to Kafka (downstream consumers)
// and a Redis pub/sub channel (the draw-service websocket hub).
type Publisher struct {
	Writer  *kafka.Writer
	Redis   *redis.Client
	Channel string
}

func New(w *kafka.Writer, rdb *redis.Client, channel string) *Publisher {
	return &Publisher{Writer: w, Redis: rdb, Channel: channel}
}

func (p *Publisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, _ := json.Marshal(e)

	if err := p.Writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.BetID), Value: b}); err != nil {
		return err
	}

	if p.Redis != nil {
		// realtime UI path; the draw-service websocket hub fans the
		// envelope out to clients subscribed to the game. Best effort.
		env, _ := json.Marshal(struct {
			GameType string      `json:"gameType"`
			Payload  interface{} `json:"payload"`
		}{GameType: e.GameType, Payload: e})
		_ = p.Redis.Publish(ctx, p.Channel, env).Err()
	}
	return nil
}
