package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/mm2d3d/lottery-platform/internal/shared/config"
	"github.com/mm2d3d/lottery-platform/internal/shared/logger"
)

func rp(to string) *httputil.ReverseProxy {
	u, _ := url.Parse(to)
	return httputil.NewSingleHostReverseProxy(u)
}

func target(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	wallet := rp(target("WALLET_URL", "http://localhost:8082"))
	bet := rp(target("BET_URL", "http://localhost:8083"))
	draw := rp(target("DRAW_URL", "http://localhost:8084"))

	mux := http.NewServeMux()
	// bet and wallet services route on /bets/* and /wallet/*, the draw
	// service on /v1/*
	mux.Handle("/api/wallet/", http.StripPrefix("/api", wallet))
	mux.Handle("/api/wallet", http.StripPrefix("/api", wallet))
	mux.Handle("/api/bets/", http.StripPrefix("/api", bet))
	mux.Handle("/api/bets", http.StripPrefix("/api", bet))
	mux.Handle("/api/draws/", http.StripPrefix("/api/draws", draw))

	addr := ":" + cfg.HTTPPort
	log.Info("api-gateway listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, withCORS(mux)); err != nil && err != http.ErrServerClosed {
		log.Fatal("gateway failed", zap.Error(err))
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
