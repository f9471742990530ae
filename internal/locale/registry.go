package locale

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"resume-builder/internal/logging"
)

// Registry serves the current catalog and swaps it when the backing file
// changes. Readers never observe a partially loaded catalog.
type Registry struct {
	current atomic.Pointer[Catalog]
	logger  logging.Logger
}

func NewRegistry(c *Catalog, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	r := &Registry{logger: logger}
	r.current.Store(c)
	return r
}

func (r *Registry) Catalog() *Catalog {
	return r.current.Load()
}

// LoadFile parses path and makes it the current catalog. On error the
// previous catalog stays in place.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read presets %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return err
	}
	r.current.Store(c)
	return nil
}

// Watch reloads path whenever it is written or recreated, until ctx is
// done. The parent directory is watched so editors that replace the file
// by rename are picked up.
func (r *Registry) Watch(ctx context.Context, path string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create presets watcher: %w", err)
	}
	defer w.Close()

	path = filepath.Clean(path)
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := r.LoadFile(path); err != nil {
				r.logger.Warn(ctx, "presets reload failed, keeping previous catalog", "path", path, "error", err)
				continue
			}
			r.logger.Info(ctx, "presets reloaded", "path", path, "locales", len(r.Catalog().order))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn(ctx, "presets watcher error", "error", err)
		}
	}
}
