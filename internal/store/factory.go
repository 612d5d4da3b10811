package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is one of "memory", "file", "sqlite", "redis" or "s3".
	Driver string
	// Key names the collection. Defaults to DefaultKey.
	Key string

	Dir        string
	SQLitePath string
	Redis      RedisConfig
	S3         S3Config
}

// New opens the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}

	log.Debug("Opening store",
		zap.String("driver", cfg.Driver),
		zap.String("key", key))

	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "memory":
		st = NewMemory()
	case "", "file":
		st, err = asStore(NewFile(cfg.Dir, key))
	case "sqlite":
		st, err = asStore(NewSQLite(ctx, cfg.SQLitePath, key))
	case "redis":
		st, err = asStore(NewRedis(ctx, cfg.Redis, key))
	case "s3":
		st, err = asStore(NewS3(ctx, cfg.S3, key, log))
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Driver, err)
	}
	return st, nil
}

// asStore keeps a nil concrete pointer from becoming a non-nil Store.
func asStore[S Store](s S, err error) (Store, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
