package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docsearch/internal/domain/document"
)

// Options configures an indexing run.
type Options struct {
	Dir           string
	Pattern       string // matched against file names from the start, like .*json
	IDField       string
	Workers       int
	FlushBytes    int
	WaitForStatus string
	WaitTimeout   time.Duration
	// Mappings are applied when the index is created; facet fields must map to keyword.
	Mappings map[string]any
}

// Report summarizes an indexing run.
type Report struct {
	Files    int
	Indexed  int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// Service rebuilds the search index from a tree of JSON documentation files.
type Service struct {
	engine  Engine
	files   fs.FS
	opts    Options
	pattern *regexp.Regexp
	logger  *zap.Logger
}

// New creates an indexer reading from opts.Dir.
func New(engine Engine, opts Options, logger *zap.Logger) (*Service, error) {
	return NewFS(engine, os.DirFS(opts.Dir), opts, logger)
}

// NewFS creates an indexer reading from fsys instead of opts.Dir.
func NewFS(engine Engine, fsys fs.FS, opts Options, logger *zap.Logger) (*Service, error) {
	if opts.Pattern == "" {
		opts.Pattern = ".*json"
	}
	re, err := regexp.Compile(`^(?:` + opts.Pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("compile file pattern: %w", err)
	}
	if opts.WaitForStatus == "" {
		opts.WaitForStatus = "yellow"
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 30 * time.Second
	}
	return &Service{engine: engine, files: fsys, opts: opts, pattern: re, logger: logger}, nil
}

// Matches reports whether a file name is picked up by the indexer.
func (s *Service) Matches(name string) bool {
	return s.pattern.MatchString(path.Base(name))
}

// Files lists matching files in walk order, as slash-separated paths relative to the root.
func (s *Service) Files() ([]string, error) {
	var out []string
	err := fs.WalkDir(s.files, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && s.Matches(d.Name()) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.opts.Dir, err)
	}
	return out, nil
}

// Run replaces the index with the current documents: it checks the engine, drops an
// existing index, recreates it with the configured mappings, bulk indexes every
// parsable file and waits for the cluster status.
// Unreadable or malformed files are skipped and counted.
func (s *Service) Run(ctx context.Context) (Report, error) {
	start := time.Now()

	files, err := s.Files()
	if err != nil {
		return Report{}, err
	}
	report := Report{Files: len(files)}

	docs := make([]document.Document, 0, len(files))
	for _, f := range files {
		doc, err := s.load(f)
		if err != nil {
			report.Skipped++
			s.logger.Warn("Skipping document", zap.String("file", f), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	if err := s.engine.Ping(ctx); err != nil {
		return report, fmt.Errorf("check engine connection: %w", err)
	}

	exists, err := s.engine.IndexExists(ctx)
	if err != nil {
		return report, fmt.Errorf("check index: %w", err)
	}
	if exists {
		if err := s.engine.DeleteIndex(ctx); err != nil {
			return report, fmt.Errorf("delete index: %w", err)
		}
		s.logger.Info("Deleted existing index")
	}
	if err := s.engine.CreateIndex(ctx, s.opts.Mappings); err != nil {
		return report, fmt.Errorf("create index: %w", err)
	}

	stats, err := s.engine.BulkIndex(ctx, docs, document.IndexOptions{
		Workers:    s.opts.Workers,
		FlushBytes: s.opts.FlushBytes,
	}, func(doc document.Document, reason string) {
		s.logger.Warn("Document rejected",
			zap.String("file", doc.Path()),
			zap.String("id", doc.ID()),
			zap.String("reason", reason),
		)
	})
	if err != nil {
		return report, fmt.Errorf("bulk index: %w", err)
	}
	report.Indexed = stats.Indexed
	report.Failed = stats.Failed

	if err := s.engine.WaitForStatus(ctx, s.opts.WaitForStatus, s.opts.WaitTimeout); err != nil {
		return report, fmt.Errorf("wait for %s status: %w", s.opts.WaitForStatus, err)
	}

	report.Duration = time.Since(start)
	s.logger.Info("Indexing completed",
		zap.Int("files", report.Files),
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

func (s *Service) load(name string) (document.Document, error) {
	data, err := fs.ReadFile(s.files, name)
	if err != nil {
		return document.Document{}, fmt.Errorf("read: %w", err)
	}
	doc, err := document.Parse(name, data, s.opts.IDField)
	if err != nil {
		return document.Document{}, fmt.Errorf("parse: %w", err)
	}
	return doc, nil
}
