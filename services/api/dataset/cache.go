package dataset

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache memoizes sessions per source. A zero TTL keeps a session for the
// lifetime of the process, until Invalidate is called.
type Cache struct {
	store  *gocache.Cache
	group  singleflight.Group
	logger *zap.Logger
}

// NewCache creates a session cache.
func NewCache(ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 2 * ttl
	}
	return &Cache{
		store:  gocache.New(expiration, cleanup),
		logger: logger,
	}
}

// Session returns the cached session for src, loading it on first use.
// Concurrent callers share a single load.
func (c *Cache) Session(ctx context.Context, src Source) (*Session, error) {
	key := src.Name()
	if v, ok := c.store.Get(key); ok {
		return v.(*Session), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}
		sess, err := Load(ctx, src, c.logger)
		if err != nil {
			return nil, err
		}
		c.store.Set(key, sess, gocache.DefaultExpiration)
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Invalidate drops the cached session for src.
func (c *Cache) Invalidate(src Source) {
	c.store.Delete(src.Name())
	c.logger.Info("session cache invalidated", zap.String("source", src.Name()))
}
