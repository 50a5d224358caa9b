package indexer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// Watch re-runs the indexer whenever a matching file under opts.Dir changes, waiting
// for debounce of quiet before each run. Every run's outcome goes to onRun.
// It blocks until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, debounce time.Duration, onRun func(Report, error)) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := watchTree(w, s.opts.Dir); err != nil {
		return err
	}
	s.logger.Info("Watching documents", zap.String("dir", s.opts.Dir), zap.Duration("debounce", debounce))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := watchTree(w, ev.Name); err != nil {
						s.logger.Warn("Failed to watch new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
					timer.Reset(debounce)
					continue
				}
			}
			if !s.relevant(ev) {
				continue
			}
			s.logger.Debug("Document changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			timer.Reset(debounce)

		case <-timer.C:
			report, err := s.Run(ctx)
			if err != nil {
				s.logger.Error("Reindex failed", zap.Error(err))
			}
			if onRun != nil {
				onRun(report, err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

func (s *Service) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	return s.Matches(filepath.Base(ev.Name))
}

// watchTree adds root and every directory below it; fsnotify watches are not recursive.
func watchTree(w *fsnotify.Watcher, root string) error {
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.Add(p); err != nil {
				return fmt.Errorf("watch %s: %w", p, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch tree %s: %w", root, err)
	}
	return nil
}
