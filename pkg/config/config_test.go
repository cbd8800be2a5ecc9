package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickcart/pkg/apperr"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "STORAGE_BACKEND", "DATABASE_URL", "SEED", "IDEMPOTENCY_TTL",
		"KAFKA_BROKERS", "KAFKA_ORDER_TOPIC", "OTEL_PROBABILITY", "LOG_LEVEL", "TLS_CERT", "TLS_KEY"} {
		t.Setenv(k, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8443", cfg.HTTPAddr)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.True(t, cfg.Seed)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, "orders.events", cfg.KafkaOrderTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 1.0, cfg.OTELProbability)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/quickcart")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("SEED", "false")
	t.Setenv("IDEMPOTENCY_TTL", "90m")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.Seed)
	assert.Equal(t, 90*time.Minute, cfg.IdempotencyTTL)
}

func TestUnknownBackendIsValidationError(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "mongo")
	_, err := FromEnv()
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "STORAGE_BACKEND", ve.Field)
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"STORAGE_BACKEND": "mongo"}},
		{"postgres without url", map[string]string{"STORAGE_BACKEND": "postgres", "DATABASE_URL": ""}},
		{"half tls", map[string]string{"TLS_CERT": "server.crt", "TLS_KEY": ""}},
		{"bad seed", map[string]string{"SEED": "maybe"}},
		{"bad ttl", map[string]string{"IDEMPOTENCY_TTL": "soon"}},
		{"probability range", map[string]string{"OTEL_PROBABILITY": "1.5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
