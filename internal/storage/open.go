package storage

import (
	"context"
	"fmt"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type Options struct {
	Backend     string
	Dir         string
	RedisAddr   string
	RedisPrefix string
}

// Open returns the store selected by opts.Backend and a function releasing it.
func Open(ctx context.Context, opts Options) (Store, func() error, error) {
	switch opts.Backend {
	case BackendRedis:
		rs, err := NewRedisStore(ctx, opts.RedisAddr, opts.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return rs, rs.Close, nil
	case BackendFile, "":
		fs, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
