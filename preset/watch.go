package preset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phanxgames/gpuimage"
)

// settle is how long Watch waits after the last change before rebuilding,
// so an editor's write and rename land as one reload.
const settle = 100 * time.Millisecond

// Watch rebuilds the preset at path each time the file changes and passes
// the result to fn, typically forwarding the filter to Renderer.SetFilter.
// Build errors are passed to fn as well; the watch continues. fn runs on
// the watcher's goroutine. Watch returns once the watch is installed and
// stops when ctx ends.
func Watch(ctx context.Context, path string, fn func(gpuimage.Filter, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("preset: %w", err)
	}
	go watchLoop(ctx, w, filepath.Clean(path), fn)
	return nil
}

func watchLoop(ctx context.Context, w *fsnotify.Watcher, path string, fn func(gpuimage.Filter, error)) {
	defer w.Close()
	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				reload = time.After(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			gpuimage.Logger().Warn("preset: watch error", slog.String("path", path), slog.Any("error", err))
		case <-reload:
			reload = nil
			f, err := rebuild(path)
			if err != nil {
				gpuimage.Logger().Warn("preset: reload failed", slog.String("path", path), slog.Any("error", err))
			} else {
				gpuimage.Logger().Info("preset: reloaded", slog.String("path", path))
			}
			fn(f, err)
		}
	}
}

func rebuild(path string) (gpuimage.Filter, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	return p.Build()
}
