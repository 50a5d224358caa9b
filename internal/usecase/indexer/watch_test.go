package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

type runResult struct {
	report Report
	err    error
}

func TestWatch_ReindexesOnChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"id": "a"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	eng := &mockEngine{}
	svc, err := New(eng, Options{Dir: dir, IDField: "id"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	runs := make(chan runResult, 8)
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, 50*time.Millisecond, func(r Report, err error) {
			runs <- runResult{r, err}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"id": "b"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-runs:
		if r.err != nil {
			t.Fatalf("unexpected error: %v", r.err)
		}
		if r.report.Files != 2 || r.report.Indexed != 2 {
			t.Errorf("report = %+v", r.report)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reindex after change")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	svc, err := New(&mockEngine{}, Options{Dir: filepath.Join(t.TempDir(), "missing")}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Watch(context.Background(), time.Millisecond, nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestMatches_FullPath(t *testing.T) {
	svc, err := New(&mockEngine{}, Options{Dir: t.TempDir()}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !svc.Matches("/docs/fim/test.json") {
		t.Error("json file should match")
	}
	if svc.Matches("/docs/fim/test.md") {
		t.Error("markdown should not match")
	}
}
