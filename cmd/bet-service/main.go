package main

import (
	"context"
	"net/http"
	"os"

	"go.uber.org/zap"

	betHTTP "github.com/mm2d3d/lottery-platform/internal/bet-service/http"
	"github.com/mm2d3d/lottery-platform/internal/bet-service/producer"
	"github.com/mm2d3d/lottery-platform/internal/bet-service/repo"
	"github.com/mm2d3d/lottery-platform/internal/bet-service/session"
	"github.com/mm2d3d/lottery-platform/internal/bet-service/wallet"
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

	writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer writer.Close()

	walletURL := os.Getenv("WALLET_URL")
	if walletURL == "" {
		walletURL = "http://localhost:8082"
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	srv := betHTTP.NewServer(log, rules,
		repo.NewPostgres(pg),
		wallet.New(walletURL),
		session.NewChecker(rdb, pg),
		producer.NewKafkaPublisher(writer, cfg.TopicBetPlaced),
	)

	addr := ":" + cfg.HTTPPort
	log.Info("bet-service listening", zap.String("addr", addr), zap.String("wallet", walletURL))
	if err := http.ListenAndServe(addr, srv.Router()); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}
