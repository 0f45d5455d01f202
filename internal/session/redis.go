package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend persists state in Redis, for deployments where the gateway
// runs on ephemeral storage.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend connects to addr with short timeouts.
func NewRedisBackend(addr, key string) *RedisBackend {
	if key == "" {
		key = "portal:session"
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &RedisBackend{client: client, key: key}
}

// Load reads the stored state.
func (b *RedisBackend) Load() (State, bool, error) {
	raw, err := b.client.Get(context.Background(), b.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, false, nil
	}
	return state, true, nil
}

// Save writes the state.
func (b *RedisBackend) Save(state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return b.client.Set(context.Background(), b.key, raw, 0).Err()
}

// Clear removes the stored state.
func (b *RedisBackend) Clear() error {
	return b.client.Del(context.Background(), b.key).Err()
}

// Healthy verifies Redis connectivity.
func (b *RedisBackend) Healthy(ctx context.Context) bool {
	if b == nil || b.client == nil {
		return false
	}
	return b.client.Ping(ctx).Err() == nil
}
