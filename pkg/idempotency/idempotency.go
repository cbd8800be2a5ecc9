// Package idempotency remembers the outcome of requests carrying an
// Idempotency-Key so that retries replay the first response.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pending = "pending"

// State is what Reserve found under a key.
type State int

const (
	// Reserved means the caller owns the key and must Complete or Release it.
	Reserved State = iota
	// InProgress means another request holds the key.
	InProgress
	// Replay means a response was stored earlier.
	Replay
)

// Response is a stored HTTP outcome.
type Response struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key namespaces a client supplied key by scope, usually the route and session.
func (s *Store) Key(scope, key string) string {
	return fmt.Sprintf("idem:%s:%s", scope, key)
}

// Reserve claims key. For Replay the stored response is returned.
func (s *Store) Reserve(ctx context.Context, key string) (State, Response, error) {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.rdb.SetNX(ctx, key, pending, s.ttl).Result()
		if err != nil {
			return 0, Response{}, fmt.Errorf("reserve %s: %w", key, err)
		}
		if ok {
			return Reserved, Response{}, nil
		}

		val, err := s.rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			// expired between the two calls
			continue
		}
		if err != nil {
			return 0, Response{}, fmt.Errorf("read %s: %w", key, err)
		}
		if val == pending {
			return InProgress, Response{}, nil
		}
		var resp Response
		if err := json.Unmarshal([]byte(val), &resp); err != nil {
			return 0, Response{}, fmt.Errorf("decode %s: %w", key, err)
		}
		return Replay, resp, nil
	}
	return InProgress, Response{}, nil
}

// Complete stores the response for a reserved key.
func (s *Store) Complete(ctx context.Context, key string, resp Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("complete %s: %w", key, err)
	}
	return nil
}

// Release drops a reservation so the request may be retried.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}
