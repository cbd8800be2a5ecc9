package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "quickcart/docs"
	"quickcart/pkg/config"
	"quickcart/pkg/database"
	"quickcart/pkg/events"
	"quickcart/pkg/idempotency"
	"quickcart/pkg/logger"
	"quickcart/pkg/order"
	"quickcart/pkg/otel"
	"quickcart/pkg/storage"
)

// @title QuickCart API
// @version 1.0
// @description Store catalog, session carts and orders for grocery delivery
// @host localhost:8443
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, level, "quickcart", otel.GetTraceID)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(context.Background(), "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	tp, shutdown, err := otel.InitTracing(log, otel.Config{
		ServiceName: "quickcart",
		Host:        cfg.OTELHost,
		Probability: cfg.OTELProbability,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer shutdown(context.Background())

	store, ping, closeStore, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info(ctx, "storage ready", "backend", cfg.StorageBackend)

	if cfg.Seed {
		seeded, err := store.Seed(ctx, storage.DefaultFixture(order.Now()))
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info(ctx, "seed", "loaded", seeded)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaOrderTopic)
		log.Info(ctx, "publishing order events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaOrderTopic)
	}
	defer publisher.Close()

	var idem *idempotency.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		idem = idempotency.NewStore(rdb, cfg.IdempotencyTTL)
		log.Info(ctx, "idempotency keys enabled", "addr", cfg.RedisAddr, "ttl", cfg.IdempotencyTTL)
	}

	a := &api{
		store:  store,
		log:    log,
		events: publisher,
		idem:   idem,
		ping:   ping,
		now:    time.Now,
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.routes(tp.Tracer("quickcart")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr, "tls", cfg.TLSCert != "")
		if cfg.TLSCert != "" {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStorage returns the configured backing, a readiness probe and a release func.
func openStorage(ctx context.Context, cfg config.Config) (storage.Storage, func(context.Context) error, func(), error) {
	if cfg.StorageBackend == config.BackendMemory {
		return storage.NewMemory(), nil, func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db connect: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return storage.NewPostgres(db), db.PingContext, closer(db), nil
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}
