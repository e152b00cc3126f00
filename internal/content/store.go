package content

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Store holds the current data snapshot and swaps it on reload.
type Store struct {
	paths  Paths
	logger *zap.Logger

	mu   sync.RWMutex
	data *Data

	onReload func(*Data)
}

// NewStore loads the initial snapshot. A load failure here is returned;
// later reload failures keep the previous snapshot.
func NewStore(paths Paths, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := Load(paths)
	if err != nil {
		return nil, err
	}
	s := &Store{paths: paths, logger: logger, data: data}
	s.logLoaded(data)
	return s, nil
}

// NewStaticStore wraps an already loaded snapshot. It never reloads.
func NewStaticStore(data *Data) *Store {
	return &Store{data: data, logger: zap.NewNop()}
}

// Current returns the active snapshot. Callers must not mutate it.
func (s *Store) Current() *Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// OnReload registers fn to be called after every successful reload.
func (s *Store) OnReload(fn func(*Data)) {
	s.mu.Lock()
	s.onReload = fn
	s.mu.Unlock()
}

// Reload reads the data files again and swaps the snapshot in.
func (s *Store) Reload() error {
	data, err := Load(s.paths)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	fn := s.onReload
	s.mu.Unlock()

	s.logLoaded(data)
	if fn != nil {
		fn(data)
	}
	return nil
}

func (s *Store) logLoaded(d *Data) {
	images, pdfs := d.Assets.Counts()
	s.logger.Info("content loaded",
		zap.Int("codes", d.Codes.Len()),
		zap.Int("routes", len(d.Routes)),
		zap.Int("details", len(d.Details)),
		zap.Int("experience", len(d.Experience.Entries)),
		zap.Int("images", images),
		zap.Int("pdfs", pdfs),
	)
	for _, w := range d.Warnings {
		s.logger.Warn("content problem", zap.String("detail", w))
	}
}

// Watch reloads the store whenever a file in the data or asset directories
// changes. Bursts of events are collapsed by waiting for debounce of quiet.
// It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer watcher.Close()

	for _, dir := range []string{s.paths.DataDir, s.paths.ImageDir, s.paths.PDFDir} {
		if dir != "" {
			s.watchTree(watcher, filepath.Clean(dir))
		}
	}

	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			s.logger.Debug("content changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					s.watchTree(watcher, event.Name)
				}
			}
			timer.Reset(debounce)

		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.logger.Error("content reload failed, keeping previous data", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// watchTree adds root and every directory below it, since fsnotify only
// reports changes to direct children and assets are indexed recursively.
func (s *Store) watchTree(watcher *fsnotify.Watcher, root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			s.logger.Warn("not watching directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("not watching directory", zap.String("dir", root), zap.Error(err))
	}
}
