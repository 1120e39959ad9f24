// # internal/watcher/watcher.go
package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"courseplan/internal/shared/observability"
	"courseplan/internal/shared/util"
)

// Watcher reloads the catalog when its source file changes. It watches the
// containing directory because editors replace files with rename+create,
// which drops a watch registered on the file itself.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	file       string
	debounce   time.Duration
	retryDelay time.Duration
	limiter    *util.Limiter
	onChange   func()
	callbackMu sync.Mutex

	pendingMu sync.Mutex
	timer     *time.Timer
	closed    bool
}

// New builds a watcher for the given file. maxPerMinute caps how often
// onChange may fire; a change arriving over the cap is deferred until the
// limiter refills, so the last save in a storm still reloads.
func New(file string, debounce time.Duration, maxPerMinute int, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		fsWatcher:  fsw,
		file:       abs,
		debounce:   debounce,
		retryDelay: time.Second,
		limiter:    util.NewLimiter(float64(maxPerMinute)/60.0, 1),
		onChange:   onChange,
	}, nil
}

func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(filepath.Dir(w.file)); err != nil {
		return err
	}

	go w.run()
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != w.file {
				continue
			}
			observability.WatcherEventsTotal.Inc()

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				w.scheduleChange()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange() {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChange()
	})
}

func (w *Watcher) flushChange() {
	if !w.limiter.Allow(1) {
		observability.WatcherReloadsDeferredTotal.Inc()
		slog.Warn("reload deferred by rate limit", "file", w.file, "retry_in", w.retryDelay)

		// Re-arm instead of dropping, so the catalog never stays stale
		// past the limiter window.
		w.pendingMu.Lock()
		if !w.closed {
			w.timer = time.AfterFunc(w.retryDelay, w.flushChange)
		}
		w.pendingMu.Unlock()
		return
	}

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange()
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	if w.fsWatcher == nil {
		return nil
	}
	return w.fsWatcher.Close()
}
