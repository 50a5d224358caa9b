package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/response"
)

const keyPrefix = "docsearch:resp:"

// DefaultTTL bounds how long a cached response can outlive a reindex.
const DefaultTTL = 60 * time.Second

// engine is the wrapped search engine.
type engine interface {
	Execute(ctx context.Context, req request.Request) (response.Response, error)
}

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// prefixStore removes keys by prefix.
type prefixStore interface {
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}

// Purge drops every cached response of namespace and returns the number removed.
// Call it after the index behind namespace has been rebuilt.
func Purge(ctx context.Context, s prefixStore, namespace string) (int, error) {
	n, err := s.DeleteByPrefix(ctx, namespacePrefix(namespace))
	if err != nil {
		return n, fmt.Errorf("purge response cache: %w", err)
	}
	return n, nil
}

func namespacePrefix(namespace string) string { return keyPrefix + namespace + ":" }

// CachedEngine caches engine responses in a key-value store, keyed by the
// canonical encoding of the request. Cache failures never fail a search.
type CachedEngine struct {
	inner      engine
	store      store
	namespace  string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator. namespace separates indexes sharing one store.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"error"), passed explicitly.
func New(
	inner engine,
	s store,
	namespace string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEngine {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedEngine{
		inner:      inner,
		store:      s,
		namespace:  namespace,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Execute returns a cached response or calls the inner engine.
// Only successful responses are cached.
func (c *CachedEngine) Execute(ctx context.Context, req request.Request) (response.Response, error) {
	key, err := c.cacheKey(req)
	if err != nil {
		c.incCache("error")
		c.logger.Warn("Failed to build response cache key", zap.Error(err))
		return c.inner.Execute(ctx, req) //nolint:wrapcheck // transparent decorator
	}

	if resp, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return resp, nil
	}

	c.incCache("miss")

	resp, err := c.inner.Execute(ctx, req)
	if err != nil {
		return response.Response{}, err //nolint:wrapcheck // transparent decorator
	}

	c.putToCache(ctx, key, resp)
	return resp, nil
}

func (c *CachedEngine) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEngine) cacheKey(req request.Request) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	h := sha256.Sum256(data)
	return namespacePrefix(c.namespace) + hex.EncodeToString(h[:]), nil
}

func (c *CachedEngine) getFromCache(ctx context.Context, key string) (response.Response, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return response.Response{}, false
	}
	if len(data) == 0 {
		return response.Response{}, false
	}

	var resp response.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.Warn("Failed to parse cached response", zap.String("key", key), zap.Error(err))
		return response.Response{}, false
	}
	if resp.Hits == nil {
		resp.Hits = []response.Hit{}
	}
	return resp, true
}

func (c *CachedEngine) putToCache(ctx context.Context, key string, resp response.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.Warn("Failed to encode response for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}
