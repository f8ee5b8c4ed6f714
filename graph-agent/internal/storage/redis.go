package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
	"github.com/go-redis/redis/v8"
)

// RedisBackend stores the JSON snapshot under a single key.
type RedisBackend struct {
	client *redis.Client
	key    string
}

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

// NewRedisClient connects and pings, failing fast if Redis is unreachable.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisBackend) Location() string { return "redis:" + r.key }

func (r *RedisBackend) Read(ctx context.Context) (*kg.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kg.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return kg.DecodeSnapshot(bytes.NewReader(data))
}

func (r *RedisBackend) Write(ctx context.Context, snap *kg.Snapshot) error {
	var buf bytes.Buffer
	if err := kg.EncodeSnapshot(&buf, snap); err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, buf.Bytes(), 0).Err()
}
