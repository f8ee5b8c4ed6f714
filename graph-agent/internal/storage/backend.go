package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/kg"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the backend selected by cfg. The returned Closer releases any
// connection the backend holds.
func Open(ctx context.Context, cfg config.GraphConfig) (kg.Backend, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileBackend(cfg.Path), nopCloser{}, nil

	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisBackend(client, cfg.RedisKey), client, nil

	case config.BackendPostgres:
		db, err := OpenDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		backend := NewPostgresBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return backend, db, nil

	default:
		return nil, nil, fmt.Errorf("unknown graph backend %q", cfg.Backend)
	}
}
