package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/mm2d3d/lottery-platform/internal/shared/config"
	"github.com/mm2d3d/lottery-platform/internal/shared/db"
	"github.com/mm2d3d/lottery-platform/internal/shared/logger"
	"github.com/mm2d3d/lottery-platform/internal/shared/metrics"
	walletHTTP "github.com/mm2d3d/lottery-platform/internal/wallet-service/http"
	"github.com/mm2d3d/lottery-platform/internal/wallet-service/repo"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	srv := walletHTTP.NewServer(log, repo.NewPostgres(pg))

	addr := ":" + cfg.HTTPPort
	log.Info("wallet-service listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, srv.Router()); err != nil && err != http.ErrServerClosed {
		log.Fatal("http server failed", zap.Error(err))
	}
}
