package backend

import (
	"fmt"

	"relief-go/internal/config"
	"relief-go/internal/relief"
)

// NewBackendFromConfig creates a Backend implementation based on the store config type.
func NewBackendFromConfig(cfg config.StoreConfig) (relief.Backend, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	switch cfg.Type {
	case "memory":
		return NewMemoryBackend(), nil
	case "filesystem":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem store requires dir to be set")
		}
		b, err := NewFileSystemBackend(cfg.Dir)
		if err != nil {
			return nil, err
		}
		if err := b.ValidateSetup(); err != nil {
			return nil, err
		}
		return b, nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite store requires path to be set")
		}
		b, err := NewSQLiteBackend(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := b.ValidateSetup(); err != nil {
			b.Close()
			return nil, err
		}
		return b, nil
	case "postgres":
		b, err := NewPostgresBackend(cfg.DSN, timeout)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "redis":
		b, err := NewRedisBackend(RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case "s3":
		b, err := NewS3Backend(S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Timeout:   timeout,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
