package respcache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/db"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/response"
	"github.com/kailas-cloud/docsearch/internal/domain/search/schema"
)

type mockEngine struct {
	resp  response.Response
	err   error
	calls int
}

func (m *mockEngine) Execute(_ context.Context, _ request.Request) (response.Response, error) {
	m.calls++
	return m.resp, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

// memStore is an in-memory store for round-trip tests.
type memStore struct {
	data map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memStore) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func newCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
}

func testRequests(t *testing.T) *request.Builder {
	t.Helper()
	s, err := schema.New(schema.Params{DisplayFields: []string{"name", "id"}})
	if err != nil {
		t.Fatalf("schema.New: %v", err)
	}
	return request.NewBuilder(s)
}

func newTestCachedEngine(inner *mockEngine, s store, counter *prometheus.CounterVec) *CachedEngine {
	return New(inner, s, "qa-docs", time.Minute, counter, zap.NewNop())
}
