package logic

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// PatternsWatcher reloads a patterns override file into an Engine whenever
// the file changes on disk. A file that fails to parse leaves the previous
// rules in place.
type PatternsWatcher struct {
	path     string
	strict   bool
	engine   *Engine
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewPatternsWatcher watches the directory holding path so that editors
// which replace the file on save are still seen.
func NewPatternsWatcher(path string, strict bool, engine *Engine, logger *zap.Logger) (*PatternsWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve patterns file: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &PatternsWatcher{
		path:     abs,
		strict:   strict,
		engine:   engine,
		logger:   logger,
		watcher:  w,
		debounce: 200 * time.Millisecond,
	}, nil
}

// Reload reads the file once and swaps the engine's rules on success.
func (pw *PatternsWatcher) Reload() error {
	p, err := LoadPatterns(pw.path, pw.strict)
	if err != nil {
		return err
	}
	pw.engine.SetPatterns(p)
	return nil
}

// Run blocks until ctx is done, then closes the underlying watcher.
func (pw *PatternsWatcher) Run(ctx context.Context) error {
	defer pw.watcher.Close()

	timer := time.NewTimer(pw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-pw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != pw.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(pw.debounce)

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return nil
			}
			pw.logger.Warn("patterns watcher error", zap.Error(err))

		case <-timer.C:
			if err := pw.Reload(); err != nil {
				pw.logger.Warn("patterns reload failed, keeping previous rules",
					zap.String("path", pw.path), zap.Error(err))
				continue
			}
			pw.logger.Info("patterns reloaded", zap.String("path", pw.path))
		}
	}
}
