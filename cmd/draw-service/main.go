package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	drawCache "github.com/mm2d3d/lottery-platform/internal/draw-service/cache"
	drawHTTP "github.com/mm2d3d/lottery-platform/internal/draw-service/http"
	"github.com/mm2d3d/lottery-platform/internal/draw-service/producer"
	"github.com/mm2d3d/lottery-platform/internal/draw-service/repo"
	"github.com/mm2d3d/lottery-platform/internal/draw-service/ws"
	"github.com/mm2d3d/lottery-platform/internal/settlement"
	"github.com/mm2d3d/lottery-platform/internal/shared/cache"
	"github.com/mm2d3d/lottery-platform/internal/shared/config"
	"github.com/mm2d3d/lottery-platform/internal/shared/db"
	"github.com/mm2d3d/lottery-platform/internal/shared/kafka"
	"github.com/mm2d3d/lottery-platform/internal/shared/logger"
	"github.com/mm2d3d/lottery-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	rules, err := settlement.LoadRules(cfg.RulesPath)
	if err != nil {
		log.Fatal("payout rules", zap.Error(err))
	}

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultPublished)
	defer writer.Close()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	// websocket hub fed by the Redis pub/sub channel; both this service
	// (result publications) and the settlement-worker (per-bet events)
	// publish into it
	hub := ws.NewHub(func(*http.Request) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws.StartRedisSubscriber(ctx, log, rdb, cfg.RedisPubSubChannel, hub)

	api := &drawHTTP.API{
		Log:   log,
		Rules: rules,
		Repo:  repo.NewPostgres(pg),
		Cache: drawCache.New(rdb),
		Publ:  producer.New(writer, rdb, cfg.RedisPubSubChannel),
		WS:    hub.HandleWS,
	}

	addr := ":" + cfg.HTTPPort
	log.Info("draw-service listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, api.Router()); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}
