// Package store builds the configured session result store.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"parseview/internal/config"
	"parseview/internal/domain"
	"parseview/internal/port"
	"parseview/internal/repository/postgres"
	s3storage "parseview/internal/storage/s3"
	"parseview/internal/store/disk"
	"parseview/internal/store/memory"
	"parseview/internal/store/object"
	"parseview/internal/store/redisstore"
)

// Closer releases resources held by a store backend.
type Closer func() error

func noopCloser() error { return nil }

// New creates the result store selected by cfg.Store.Backend.
func New(ctx context.Context, cfg *config.Config) (port.ResultStore, Closer, error) {
	ttl := cfg.Store.TTL

	switch cfg.Store.Backend {
	case config.StoreBackendMemory, "":
		log.Info().Dur("ttl", ttl).Msg("store.New: using in-memory result store")
		return memory.New(ttl), noopCloser, nil

	case config.StoreBackendDisk:
		s, err := disk.New(cfg.Store.Dir, ttl)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("dir", cfg.Store.Dir).Dur("ttl", ttl).Msg("store.New: using disk result store")
		return s, noopCloser, nil

	case config.StoreBackendRedis:
		client, err := redisstore.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("store.New: using redis result store")
		return redisstore.New(client, cfg.Store.KeyPrefix, ttl), client.Close, nil

	case config.StoreBackendPostgres:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("host", cfg.DB.Host).Str("db", cfg.DB.Name).Dur("ttl", ttl).Msg("store.New: using postgres result store")
		return postgres.NewSessionResultRepo(db, ttl), db.Close, nil

	case config.StoreBackendS3:
		storage, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		if ttl > 0 {
			log.Warn().Msg("store.New: s3 backend ignores store.ttl; use a bucket lifecycle rule")
		}
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("store.New: using s3 result store")
		return object.New(storage, cfg.S3.Bucket), noopCloser, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown store backend %q", domain.ErrConfig, cfg.Store.Backend)
	}
}
