// Package config reads service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"quickcart/pkg/apperr"
)

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config holds every runtime setting.
type Config struct {
	HTTPAddr string
	TLSCert  string
	TLSKey   string

	StorageBackend string
	DatabaseURL    string
	Seed           bool

	RedisAddr      string
	IdempotencyTTL time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string

	OTELHost        string
	OTELProbability float64
	LogLevel        string
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:        env("HTTP_ADDR", ":8443"),
		TLSCert:         os.Getenv("TLS_CERT"),
		TLSKey:          os.Getenv("TLS_KEY"),
		StorageBackend:  strings.ToLower(env("STORAGE_BACKEND", BackendMemory)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		KafkaBrokers:    list(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: env("KAFKA_ORDER_TOPIC", "orders.events"),
		OTELHost:        os.Getenv("OTEL_HOST"),
		LogLevel:        env("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Seed, err = strconv.ParseBool(env("SEED", "true")); err != nil {
		return Config{}, fmt.Errorf("SEED: %w", err)
	}
	if cfg.IdempotencyTTL, err = time.ParseDuration(env("IDEMPOTENCY_TTL", "24h")); err != nil {
		return Config{}, fmt.Errorf("IDEMPOTENCY_TTL: %w", err)
	}
	if cfg.OTELProbability, err = strconv.ParseFloat(env("OTEL_PROBABILITY", "1.0"), 64); err != nil {
		return Config{}, fmt.Errorf("OTEL_PROBABILITY: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks combinations of settings.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return apperr.Invalid("DATABASE_URL", "is required for the postgres backend")
		}
	default:
		return apperr.Invalid("STORAGE_BACKEND", fmt.Sprintf("%q is not %s or %s", c.StorageBackend, BackendMemory, BackendPostgres))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return apperr.Invalid("TLS_CERT", "must be set together with TLS_KEY")
	}
	if c.OTELProbability < 0 || c.OTELProbability > 1 {
		return apperr.Invalid("OTEL_PROBABILITY", "must be between 0 and 1")
	}
	if c.IdempotencyTTL <= 0 {
		return apperr.Invalid("IDEMPOTENCY_TTL", "must be positive")
	}
	return nil
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func list(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
