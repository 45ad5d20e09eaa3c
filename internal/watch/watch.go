package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay coalesces the burst of events an editor produces on save
const DefaultDelay = 100 * time.Millisecond

// Handler is called once per settled change of the watched file
type Handler func(ctx context.Context) error

// Watcher calls a handler whenever one file changes
type Watcher struct {
	path    string
	handler Handler
	delay   time.Duration
	log     *zap.Logger
}

// New creates a watcher for path
func New(path string, handler Handler, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		path:    filepath.Clean(path),
		handler: handler,
		delay:   DefaultDelay,
		log:     log.Named("watch"),
	}
}

// SetDelay changes how long events are coalesced before the handler runs
func (w *Watcher) SetDelay(d time.Duration) {
	w.delay = d
}

// Run watches until ctx is done. The directory is watched rather than the
// file so that editors replacing the file on save are noticed. Handler
// errors are logged and watching goes on.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	var (
		timer   *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.log.Debug("Change detected", zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			settled = timer.C

		case <-settled:
			settled = nil
			if err := w.handler(ctx); err != nil {
				w.log.Error("Handler failed", zap.String("path", w.path), zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error("fsnotify error", zap.Error(err))
		}
	}
}
