package store

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

const connectTimeout = 5 * time.Second

// Open returns the store the backend should use. With a reachable Redis at
// redisURL it is Redis, falling back to a seeded memory store on request
// errors. Otherwise it is the seeded memory store alone. The returned close
// function releases the Redis client, if any.
func Open(ctx context.Context, redisURL, publicURL string) (Store, func() error, error) {
	memory := NewMemoryStore()
	if _, err := Seed(ctx, memory, publicURL); err != nil {
		return nil, nil, err
	}
	noop := func() error { return nil }

	if redisURL == "" {
		log.Info("using in-memory sample store")
		return memory, noop, nil
	}

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	rs, err := OpenRedis(cctx, redisURL)
	if err != nil {
		log.Warn("redis unavailable, using in-memory sample store", "error", err)
		return memory, noop, nil
	}
	if _, err := Seed(cctx, rs, publicURL); err != nil {
		log.Warn("seeding redis failed, using in-memory sample store", "error", err)
		_ = rs.Close()
		return memory, noop, nil
	}

	log.Info("using redis sample store")
	return NewFallbackStore(rs, memory), rs.Close, nil
}
