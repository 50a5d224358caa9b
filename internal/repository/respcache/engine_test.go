package respcache

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
	"github.com/kailas-cloud/docsearch/internal/domain/search/response"
)

func sampleResponse() response.Response {
	kas := "true"
	return response.Response{
		Total: 1,
		Hits:  []response.Hit{{ID: "1", Source: map[string]any{"name": "fim"}}},
		Aggregations: response.Aggregations{
			"tiers":    {Buckets: []response.Bucket{{Key: "0", DocCount: 1}}},
			"disabled": {Buckets: []response.Bucket{{Key: json.Number("1"), KeyAsString: &kas, DocCount: 1}}},
		},
		PageSize: 20,
	}
}

func TestExecute_MissThenHit(t *testing.T) {
	inner := &mockEngine{resp: sampleResponse()}
	counter := newCounter()
	ce := newTestCachedEngine(inner, &memStore{data: map[string][]byte{}}, counter)
	req := testRequests(t).Build(request.State{SearchTerm: "fim"})
	ctx := context.Background()

	first, err := ce.Execute(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ce.Execute(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached response differs:\n%+v\n%+v", first, second)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestExecute_DistinctRequestsDistinctKeys(t *testing.T) {
	var keys []string
	ms := &mockKVStore{setFn: func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		keys = append(keys, key)
		if ttl != time.Minute {
			t.Errorf("ttl = %v, want 1m", ttl)
		}
		return nil
	}}
	inner := &mockEngine{resp: sampleResponse()}
	ce := newTestCachedEngine(inner, ms, nil)
	b := testRequests(t)

	full := b.Build(request.State{SearchTerm: "fim"})
	for _, req := range []request.Request{full, full.ForFacet("tiers"), b.Build(request.State{SearchTerm: "sca"})} {
		if _, err := ce.Execute(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(keys) != 3 || keys[0] == keys[1] || keys[0] == keys[2] {
		t.Errorf("expected 3 distinct keys, got %v", keys)
	}
	if !strings.HasPrefix(keys[0], "docsearch:resp:qa-docs:") {
		t.Errorf("key = %q", keys[0])
	}
}

func TestExecute_InnerErrorNotCached(t *testing.T) {
	inner := &mockEngine{err: domain.NewTransportError("search", 503, errors.New("unavailable"))}
	var setCalled bool
	ms := &mockKVStore{setFn: func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		setCalled = true
		return nil
	}}
	ce := newTestCachedEngine(inner, ms, nil)

	_, err := ce.Execute(context.Background(), testRequests(t).Build(request.State{}))
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if setCalled {
		t.Error("failed responses must not be cached")
	}
}

func TestExecute_StoreErrorsFallThrough(t *testing.T) {
	inner := &mockEngine{resp: sampleResponse()}
	ms := &mockKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return nil, errors.New("connection reset")
		},
		setFn: func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
			return errors.New("connection reset")
		},
	}
	ce := newTestCachedEngine(inner, ms, nil)

	resp, err := ce.Execute(context.Background(), testRequests(t).Build(request.State{}))
	if err != nil {
		t.Fatalf("store errors must not fail the search: %v", err)
	}
	if resp.Total != 1 || inner.calls != 1 {
		t.Errorf("unexpected result: total=%d calls=%d", resp.Total, inner.calls)
	}
}

func TestExecute_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEngine{resp: sampleResponse()}
	ms := &mockKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not json"), nil
	}}
	ce := newTestCachedEngine(inner, ms, nil)

	if _, err := ce.Execute(context.Background(), testRequests(t).Build(request.State{})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1", inner.calls)
	}
}

func TestPurge_OnlyNamespace(t *testing.T) {
	store := &memStore{data: map[string][]byte{}}
	ctx := context.Background()
	reqs := testRequests(t)

	docs := New(&mockEngine{resp: sampleResponse()}, store, "qa-docs", time.Minute, nil, zap.NewNop())
	other := New(&mockEngine{resp: sampleResponse()}, store, "qa-docs-old", time.Minute, nil, zap.NewNop())
	for _, term := range []string{"fim", "agent"} {
		if _, err := docs.Execute(ctx, reqs.Build(request.State{SearchTerm: term})); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := other.Execute(ctx, reqs.Build(request.State{SearchTerm: "fim"})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n, err := Purge(ctx, store, "qa-docs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("purged = %d, want 2", n)
	}
	if len(store.data) != 1 {
		t.Errorf("remaining keys = %d, want 1", len(store.data))
	}
}

type failingPrefixStore struct{}

func (failingPrefixStore) DeleteByPrefix(context.Context, string) (int, error) {
	return 0, errors.New("connection reset")
}

func TestPurge_Error(t *testing.T) {
	if _, err := Purge(context.Background(), failingPrefixStore{}, "qa-docs"); err == nil {
		t.Fatal("expected error")
	}
}
