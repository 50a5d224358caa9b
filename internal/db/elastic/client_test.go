package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/document"
	"github.com/kailas-cloud/docsearch/internal/domain/search/request"
)

// fakeCluster is a minimal Elasticsearch HTTP endpoint.
type fakeCluster struct {
	t       *testing.T
	handler func(w http.ResponseWriter, r *http.Request, body []byte)

	mu       sync.Mutex
	requests []string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.handler(w, r, body)
}

func newTestClient(t *testing.T, h func(w http.ResponseWriter, r *http.Request, body []byte)) (*Client, *fakeCluster) {
	t.Helper()
	fc := &fakeCluster{t: t, handler: h}
	srv := httptest.NewServer(fc)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{Addrs: []string{srv.URL}, Index: "qa-docs"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, fc
}

func TestExecute_UnavailableIsNotRetried(t *testing.T) {
	c, fc := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"type": "unavailable_shards_exception"}}`))
	})

	_, err := c.Execute(context.Background(), testBuilder(t).Build(request.State{SearchTerm: "fim"}))
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Status != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 TransportError, got %v", err)
	}
	if len(fc.requests) != 1 {
		t.Errorf("round trips = %d, want 1: %v", len(fc.requests), fc.requests)
	}
}

func TestExecute_RetriesWhenEnabled(t *testing.T) {
	fc := &fakeCluster{t: t, handler: func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}}
	srv := httptest.NewServer(fc)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{Addrs: []string{srv.URL}, Index: "qa-docs", MaxRetries: 2})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := c.Execute(context.Background(), testBuilder(t).Build(request.State{})); err == nil {
		t.Fatal("expected error")
	}
	if len(fc.requests) != 3 {
		t.Errorf("round trips = %d, want 3", len(fc.requests))
	}
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{Index: "x"}); err == nil {
		t.Error("expected error without addrs")
	}
	if _, err := NewClient(Config{Addrs: []string{"http://localhost:9200"}}); err == nil {
		t.Error("expected error without index")
	}
}

func TestExecute_Success(t *testing.T) {
	var sent map[string]any
	c, fc := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, body []byte) {
		_ = json.Unmarshal(body, &sent)
		_, _ = w.Write([]byte(`{
			"hits": {
				"total": {"value": 2, "relation": "eq"},
				"hits": [
					{"_id": "1", "_source": {"name": "fim_a"}, "highlight": {"brief": ["<em>fim</em>"]}},
					{"_id": "2", "_source": {"name": "fim_b"}}
				]
			},
			"aggregations": {
				"tiers": {"buckets": [{"key": "0", "doc_count": 2}]}
			}
		}`))
	})

	req := testBuilder(t).Build(request.State{SearchTerm: "fim", ResultsPerPage: 10})
	resp, err := c.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fc.requests[0] != "POST /qa-docs/_search" {
		t.Errorf("request = %q", fc.requests[0])
	}
	if sent["size"] != float64(10) {
		t.Errorf("sent size = %v", sent["size"])
	}
	if resp.Total != 2 || len(resp.Hits) != 2 || resp.PageSize != 10 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Hits[0].Highlight["brief"][0] != "<em>fim</em>" {
		t.Errorf("highlight = %+v", resp.Hits[0].Highlight)
	}
	if len(resp.Aggregations["tiers"].Buckets) != 1 {
		t.Errorf("aggregations = %+v", resp.Aggregations)
	}
}

func TestExecute_ErrorStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"type": "parsing_exception", "reason": "unknown query"}, "status": 400}`))
	})

	_, err := c.Execute(context.Background(), testBuilder(t).Build(request.State{}))
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatal("expected *TransportError")
	}
	if te.Status != http.StatusBadRequest || te.Op != OpSearch {
		t.Errorf("unexpected error fields: %+v", te)
	}
	if !strings.Contains(err.Error(), "parsing_exception: unknown query") {
		t.Errorf("error = %q, want engine reason", err)
	}
}

func TestExecute_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		_, _ = w.Write([]byte(`{"hits": `))
	})

	_, err := c.Execute(context.Background(), testBuilder(t).Build(request.State{}))
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestExecute_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := NewClient(Config{Addrs: []string{addr}, Index: "qa-docs"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	_, err = c.Execute(context.Background(), testBuilder(t).Build(request.State{}))
	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %v", err)
	}
	if te.Status != 0 {
		t.Errorf("Status = %d, want 0 for network errors", te.Status)
	}
}

func TestPing(t *testing.T) {
	status := http.StatusOK
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(status)
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status = http.StatusInternalServerError
	if err := c.Ping(context.Background()); !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	status := http.StatusOK
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(status)
	})

	ok, err := c.IndexExists(context.Background())
	if err != nil || !ok {
		t.Fatalf("IndexExists = %v, %v; want true", ok, err)
	}

	status = http.StatusNotFound
	ok, err = c.IndexExists(context.Background())
	if err != nil || ok {
		t.Fatalf("IndexExists = %v, %v; want false", ok, err)
	}
}

func TestDeleteIndex_MissingIsOK(t *testing.T) {
	c, fc := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, _ []byte) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"type": "index_not_found_exception", "reason": "no such index"}}`))
	})

	if err := c.DeleteIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.requests[0] != "DELETE /qa-docs" {
		t.Errorf("request = %q", fc.requests[0])
	}
}

func TestBulkIndex(t *testing.T) {
	var bulkBody string
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request, body []byte) {
		bulkBody = string(body)
		_, _ = w.Write([]byte(`{"took": 1, "errors": true, "items": [
			{"index": {"_index": "qa-docs", "_id": "a", "status": 201}},
			{"index": {"_index": "qa-docs", "_id": "b", "status": 400,
				"error": {"type": "mapper_parsing_exception", "reason": "bad field"}}}
		]}`))
	})

	docA, _ := document.Parse("a.json", []byte(`{"id": "a"}`), "id")
	docB, _ := document.Parse("b.json", []byte(`{"id": "b"}`), "id")

	var failures []string
	stats, err := c.BulkIndex(context.Background(), []document.Document{docA, docB}, document.IndexOptions{Workers: 1},
		func(d document.Document, reason string) {
			failures = append(failures, d.ID()+" "+reason)
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(bulkBody, `"_id":"a"`) || !strings.Contains(bulkBody, `"_id":"b"`) {
		t.Errorf("bulk body missing document IDs:\n%s", bulkBody)
	}
	if stats.Failed != 1 {
		t.Errorf("Failed = %d, want 1", stats.Failed)
	}
	if len(failures) != 1 || failures[0] != "b mapper_parsing_exception: bad field" {
		t.Errorf("failures = %v", failures)
	}
}

func TestWaitForStatus(t *testing.T) {
	var query string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request, _ []byte) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"status": "yellow", "timed_out": false}`))
	})

	if err := c.WaitForStatus(context.Background(), "yellow", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query, "wait_for_status=yellow") {
		t.Errorf("query = %q", query)
	}
}
