// Package cache keeps list pages in Redis.
//
// Pages are stored under a per-resource version, so a content change
// invalidates every cached page of that resource with a single INCR:
//
//	c := cache.New(rdb, 5*time.Minute)
//	list := cache.Wrap(c, "berita", httplist.List[News](client, "/berita"))
//	...
//	_ = c.Bump(ctx, "berita") // after a news item was created or edited
//
// Redis failures never fail a list call: they are logged and the wrapped
// list function is used directly.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nrfta/listing-go"
)

const (
	keyPrefix = "list"

	// BumpChannel is the Redis channel Bump publishes bumped resource names on.
	BumpChannel = "list.bump"
)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithKeyPrefix replaces the "list" key prefix, for Redis instances shared
// between deployments.
func WithKeyPrefix(prefix string) Option {
	return func(c *Cache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// Cache stores list pages in Redis with versioned keys. A nil *Cache or a
// Cache without client caches nothing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// New creates a Cache. Pages expire after ttl; zero keeps them until the
// resource is bumped and Redis evicts them.
func New(client *redis.Client, ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		ttl:    ttl,
		prefix: keyPrefix,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) versionKey(resource string) string {
	return strings.Join([]string{c.prefix, resource, "version"}, ":")
}

// Version returns the current version of resource, initialising it to 1.
func (c *Cache) Version(ctx context.Context, resource string) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}

	key := c.versionKey(resource)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX so concurrent initialisers agree on the version.
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, errors.Wrapf(err, "initialise version of %s", resource)
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read version of %s", resource)
	}
	return ver, nil
}

// Key returns the cache key of the page q of resource at its current version.
func (c *Cache) Key(ctx context.Context, resource string, q listing.Query) (string, error) {
	ver, err := c.Version(ctx, resource)
	if err != nil {
		return "", err
	}
	return strings.Join([]string{c.prefix, resource, strconv.FormatInt(ver, 10), q.Key()}, ":"), nil
}

// Bump invalidates every cached page of resource and publishes the resource
// name on BumpChannel.
func (c *Cache) Bump(ctx context.Context, resource string) error {
	if !c.enabled() {
		return nil
	}

	ver, err := c.client.Incr(ctx, c.versionKey(resource)).Result()
	if err != nil {
		return errors.Wrapf(err, "bump version of %s", resource)
	}
	c.logger.Debug("list cache bumped", zap.String("resource", resource), zap.Int64("version", ver))

	if err := c.client.Publish(ctx, BumpChannel, resource).Err(); err != nil {
		return errors.Wrapf(err, "publish bump of %s", resource)
	}
	return nil
}

// Invalidations returns the names of resources as they are bumped, by this
// or any other process sharing the Redis instance. The subscription is
// confirmed before Invalidations returns. The channel is closed when ctx is
// done.
func (c *Cache) Invalidations(ctx context.Context) (<-chan string, error) {
	out := make(chan string)
	if !c.enabled() {
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, nil
	}

	pubsub := c.client.Subscribe(ctx, BumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, errors.Wrap(err, "subscribe to list cache bumps")
	}

	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Wrap serves pages of resource from c, calling list on a miss and storing
// its result. Errors of list are returned as is and never cached.
func Wrap[T any](c *Cache, resource string, list listing.ListFunc[T]) listing.ListFunc[T] {
	if !c.enabled() {
		return list
	}

	return func(ctx context.Context, q listing.Query) (*listing.Result[T], error) {
		log := c.logger.With(zap.String("resource", resource))

		key, err := c.Key(ctx, resource, q)
		if err != nil {
			log.Warn("list cache unavailable", zap.Error(err))
			return list(ctx, q)
		}

		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var res listing.Result[T]
			if err := json.Unmarshal(payload, &res); err == nil {
				log.Debug("list cache hit", zap.String("key", key))
				return &res, nil
			}
			log.Warn("discarding undecodable list cache entry", zap.String("key", key))
		case !errors.Is(err, redis.Nil):
			log.Warn("list cache read failed", zap.String("key", key), zap.Error(err))
			return list(ctx, q)
		}

		res, err := list(ctx, q)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(res)
		if err != nil {
			log.Warn("list page not cacheable", zap.Error(err))
			return res, nil
		}
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Warn("list cache write failed", zap.String("key", key), zap.Error(err))
		}
		return res, nil
	}
}
