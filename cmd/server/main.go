package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"atlas/internal/country/fetch"
	"atlas/internal/country/handler"
	countrymetrics "atlas/internal/country/metrics"
	"atlas/internal/country/service"
	"atlas/internal/country/store"
	"atlas/internal/country/transform"
	httpapi "atlas/internal/http"
	"atlas/internal/platform/config"
	"atlas/internal/platform/httpserver"
	"atlas/internal/platform/logger"
	"atlas/internal/platform/metrics"
	platformredis "atlas/internal/platform/redis"
	"atlas/internal/render"
)

// main wires dependencies and keeps the server lifecycle small. Business logic
// lives in the internal service packages.
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()

	db, err := openDatabase(cfg)
	if err != nil {
		log.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	st := store.NewPostgres(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.InitSchema(ctx); err != nil {
		cancel()
		log.Error("schema initialization failed", "error", err)
		os.Exit(1)
	}
	cancel()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("exchange-rate cache enabled", "ttl", cfg.Redis.RatesTTL)
	}

	ratesCache := fetch.NewRatesCache(redisClient, cfg.Redis.RatesTTL, log)
	fetcher := fetch.New(cfg.CountriesAPIURL, cfg.ExchangeAPIURL, cfg.FetchTimeout, ratesCache)

	renderer, err := render.New(cfg.ImagePath)
	if err != nil {
		log.Error("renderer setup failed", "error", err)
		os.Exit(1)
	}

	platformMetrics := metrics.New()
	svc := service.New(fetcher, st, renderer, transform.NewSource(), log, countrymetrics.New())

	h := handler.New(svc, log, cfg.ImagePath)
	router := httpapi.NewRouter(h, log, platformMetrics)

	srv := httpserver.New(cfg, router)

	log.Info("starting atlas", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// openDatabase opens the pooled connection the store owns for its lifetime; no
// ambient global pool.
func openDatabase(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Bound the pool so excess requests queue instead of exhausting the server.
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
