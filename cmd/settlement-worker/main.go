package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mm2d3d/lottery-platform/internal/settlement"
	"github.com/mm2d3d/lottery-platform/internal/settlement-worker/ledger"
	"github.com/mm2d3d/lottery-platform/internal/settlement-worker/producer"
	"github.com/mm2d3d/lottery-platform/internal/settlement-worker/repo"
	"github.com/mm2d3d/lottery-platform/internal/settlement-worker/settler"
	"github.com/mm2d3d/lottery-platform/internal/shared/cache"
	"github.com/mm2d3d/lottery-platform/internal/shared/config"
	"github.com/mm2d3d/lottery-platform/internal/shared/db"
	"github.com/mm2d3d/lottery-platform/internal/shared/kafka"
	"github.com/mm2d3d/lottery-platform/internal/shared/logger"
	"github.com/mm2d3d/lottery-platform/internal/shared/metrics"
	ev "github.com/mm2d3d/lottery-platform/pkg/contracts/events"
)

var (
	drawsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_draws_total",
		Help: "Draws fully settled by this worker.",
	})
	betsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settlement_bets_total",
		Help: "Bets moved to a terminal status, by outcome.",
	}, []string{"outcome"})
	payoutKyat = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_payout_kyat_total",
		Help: "Total kyat credited to winners.",
	})
	eventsDLQ = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settlement_events_dlq_total",
		Help: "result_published events parked on the DLQ.",
	})
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

	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicResultPublished, "settlement-worker")
	defer reader.Close()

	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicResultPublishedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultPublishedDLQ)
		defer dlqWriter.Close()
	}

	walletURL := os.Getenv("WALLET_URL")
	if walletURL == "" {
		walletURL = "http://localhost:8082"
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		return pg.PingContext(ctx)
	})

	engine := settlement.NewEngine(rules)
	s := settler.New(log, engine,
		repo.NewPostgres(pg),
		ledger.New(walletURL),
		producer.New(settledWriter, rdb, cfg.RedisPubSubChannel),
		cfg.SettleBatchSize,
	)

	log.Info("settlement-worker started",
		zap.String("consume", cfg.TopicResultPublished),
		zap.String("publish", cfg.TopicBetSettled),
		zap.Int("batch", cfg.SettleBatchSize),
	)

	ctx := context.Background()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var published ev.ResultPublished
		if jerr := json.Unmarshal(msg.Value, &published); jerr != nil {
			log.Error("unmarshal result_published", zap.Error(jerr))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, string(msg.Key), msg.Value)
				eventsDLQ.Inc()
			}
			continue
		}

		if err := settleOne(ctx, log, s, published); err != nil {
			log.Error("settle draw", zap.String("resultId", published.ResultID), zap.Error(err))
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, published.ResultID, msg.Value)
				eventsDLQ.Inc()
			}
		}
	}
}

// settleOne retries the whole draw a few times before giving up to the
// DLQ. SettleDraw is retriable by construction so a repeat pass only
// touches bets still PENDING.
func settleOne(ctx context.Context, log *zap.Logger, s *settler.Settler, published ev.ResultPublished) error {
	result := settlement.DrawResult{
		ID:            published.ResultID,
		GameType:      settlement.GameType(published.GameType),
		DrawDate:      published.DrawDate,
		DrawSession:   settlement.Session(published.DrawSession),
		WinningNumber: published.WinningNumber,
	}

	var report settler.Report
	var err error
	const retries = 3
	for i := 0; i < retries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
		}
		report, err = s.SettleDraw(ctx, result, 0)
		if err == nil {
			break
		}
		log.Warn("settle attempt failed",
			zap.String("resultId", result.ID), zap.Int("attempt", i+1), zap.Error(err))
	}
	if err != nil {
		return err
	}

	drawsSettled.Inc()
	betsSettled.WithLabelValues("won").Add(float64(report.Won))
	betsSettled.WithLabelValues("lost").Add(float64(report.Lost))
	betsSettled.WithLabelValues("skipped").Add(float64(report.Skipped))
	betsSettled.WithLabelValues("failed").Add(float64(report.Failed))
	payoutKyat.Add(float64(report.TotalPaidKyat))

	log.Info("draw settled",
		zap.String("resultId", report.ResultID),
		zap.String("game", published.GameType),
		zap.String("drawDate", published.DrawDate),
		zap.String("session", published.DrawSession),
		zap.Int("won", report.Won),
		zap.Int("lost", report.Lost),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int64("paidKyat", report.TotalPaidKyat),
	)
	return nil
}
