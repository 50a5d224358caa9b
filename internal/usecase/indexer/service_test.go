package indexer

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain"
	"github.com/kailas-cloud/docsearch/internal/domain/document"
)

// --- Mocks ---

type mockEngine struct {
	mu sync.Mutex

	pingErr   error
	exists    bool
	createErr error
	bulkErr   error
	waitErr   error
	rejectIDs map[string]bool

	calls      []string
	mappings   map[string]any
	indexed    []document.Document
	opts       document.IndexOptions
	waitStatus string
}

func (m *mockEngine) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockEngine) Ping(context.Context) error {
	m.record("ping")
	return m.pingErr
}

func (m *mockEngine) IndexExists(context.Context) (bool, error) {
	m.record("exists")
	return m.exists, nil
}

func (m *mockEngine) DeleteIndex(context.Context) error {
	m.record("delete")
	return nil
}

func (m *mockEngine) CreateIndex(_ context.Context, mappings map[string]any) error {
	m.record("create")
	m.mu.Lock()
	m.mappings = mappings
	m.mu.Unlock()
	return m.createErr
}

func (m *mockEngine) BulkIndex(
	_ context.Context, docs []document.Document, opts document.IndexOptions,
	onFailure func(doc document.Document, reason string),
) (document.IndexStats, error) {
	m.record("bulk")
	if m.bulkErr != nil {
		return document.IndexStats{}, m.bulkErr
	}
	m.mu.Lock()
	m.indexed = docs
	m.opts = opts
	m.mu.Unlock()

	var st document.IndexStats
	for _, d := range docs {
		if m.rejectIDs[d.ID()] {
			st.Failed++
			onFailure(d, "mapper_parsing_exception: bad field")
			continue
		}
		st.Indexed++
	}
	return st, nil
}

func (m *mockEngine) WaitForStatus(_ context.Context, status string, _ time.Duration) error {
	m.record("wait")
	m.mu.Lock()
	m.waitStatus = status
	m.mu.Unlock()
	return m.waitErr
}

func (m *mockEngine) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func docsFS() fstest.MapFS {
	return fstest.MapFS{
		"fim/test_basic.json":        {Data: []byte(`{"id": "fim-1", "name": "test_basic", "tiers": [0]}`)},
		"fim/nested/test_audit.json": {Data: []byte(`{"id": 42, "name": "test_audit"}`)},
		"agentd/test_enroll.json":    {Data: []byte(`{"name": "test_enroll"}`)},
		"agentd/broken.json":         {Data: []byte(`{"name": `)},
		"agentd/README.md":           {Data: []byte(`# not a doc`)},
		"config.yaml":                {Data: []byte(`id: nope`)},
	}
}

func newTestService(t *testing.T, eng *mockEngine, opts Options) *Service {
	t.Helper()
	if opts.IDField == "" {
		opts.IDField = "id"
	}
	svc, err := NewFS(eng, docsFS(), opts, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

// --- Tests ---

func TestFiles_MatchesPatternRecursively(t *testing.T) {
	svc := newTestService(t, &mockEngine{}, Options{})

	files, err := svc.Files()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sort.Strings(files)
	want := []string{
		"agentd/broken.json",
		"agentd/test_enroll.json",
		"fim/nested/test_audit.json",
		"fim/test_basic.json",
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("files = %v, want %v", files, want)
	}
}

func TestMatches_AnchoredAtStart(t *testing.T) {
	svc := newTestService(t, &mockEngine{}, Options{Pattern: `test_.*\.json`})

	if !svc.Matches("fim/test_basic.json") {
		t.Error("expected match on base name")
	}
	if svc.Matches("my_test_basic.json") {
		t.Error("pattern must match from the start of the name")
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := NewFS(&mockEngine{}, docsFS(), Options{Pattern: "("}, zap.NewNop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestRun_ReplacesExistingIndex(t *testing.T) {
	eng := &mockEngine{exists: true, rejectIDs: map[string]bool{"42": true}}
	mappings := map[string]any{"properties": map[string]any{"os_platform": map[string]any{"type": "keyword"}}}
	svc := newTestService(t, eng, Options{Workers: 3, FlushBytes: 1024, WaitForStatus: "green", Mappings: mappings})

	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := eng.snapshot(); !reflect.DeepEqual(got, []string{"ping", "exists", "delete", "create", "bulk", "wait"}) {
		t.Errorf("calls = %v", got)
	}
	if !reflect.DeepEqual(eng.mappings, mappings) {
		t.Errorf("mappings = %v, want %v", eng.mappings, mappings)
	}
	if report.Files != 4 || report.Skipped != 1 || report.Indexed != 2 || report.Failed != 1 {
		t.Errorf("report = %+v", report)
	}
	if eng.opts.Workers != 3 || eng.opts.FlushBytes != 1024 {
		t.Errorf("bulk options = %+v", eng.opts)
	}
	if eng.waitStatus != "green" {
		t.Errorf("wait status = %q", eng.waitStatus)
	}

	ids := make(map[string]string)
	for _, d := range eng.indexed {
		ids[d.Path()] = d.ID()
	}
	if ids["fim/test_basic.json"] != "fim-1" || ids["fim/nested/test_audit.json"] != "42" {
		t.Errorf("ids = %v", ids)
	}
	if id := ids["agentd/test_enroll.json"]; len(id) != 36 {
		t.Errorf("fallback id = %q, want a UUID", id)
	}
}

func TestRun_FreshIndexSkipsDelete(t *testing.T) {
	eng := &mockEngine{}
	svc := newTestService(t, eng, Options{})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range eng.snapshot() {
		if c == "delete" {
			t.Fatal("must not delete a missing index")
		}
	}
	if eng.waitStatus != "yellow" {
		t.Errorf("default wait status = %q, want yellow", eng.waitStatus)
	}
}

func TestRun_EngineUnreachable(t *testing.T) {
	eng := &mockEngine{pingErr: domain.NewTransportError("ping", 0, errors.New("connection refused"))}
	svc := newTestService(t, eng, Options{})

	report, err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if got := eng.snapshot(); !reflect.DeepEqual(got, []string{"ping"}) {
		t.Errorf("calls = %v, nothing may run after a failed ping", got)
	}
	if report.Files != 4 {
		t.Errorf("report = %+v", report)
	}
}

func TestRun_BulkFailure(t *testing.T) {
	eng := &mockEngine{bulkErr: errors.New("indexer closed")}
	svc := newTestService(t, eng, Options{})

	if _, err := svc.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	for _, c := range eng.snapshot() {
		if c == "wait" {
			t.Fatal("must not wait for status after a failed bulk run")
		}
	}
}

func TestRun_CreateFailureStopsBeforeBulk(t *testing.T) {
	eng := &mockEngine{createErr: domain.NewTransportError("indices.create", 400, errors.New("mapper_parsing_exception"))}
	svc := newTestService(t, eng, Options{})

	_, err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if got := eng.snapshot(); !reflect.DeepEqual(got, []string{"ping", "exists", "create"}) {
		t.Errorf("calls = %v, nothing may be indexed without the mappings", got)
	}
}

func TestRun_WaitFailure(t *testing.T) {
	eng := &mockEngine{waitErr: errors.New("timed out")}
	svc := newTestService(t, eng, Options{})

	report, err := svc.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if report.Indexed != 3 {
		t.Errorf("report must keep bulk counts, got %+v", report)
	}
}
