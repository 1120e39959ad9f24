// # internal/watcher/watcher_test.go
package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"courseplan/internal/shared/util"
)

func TestWatcher_FiresOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "courses.csv")
	if err := os.WriteFile(file, []byte("CS100,Fundamentals\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 4)
	w, err := New(file, 20*time.Millisecond, 600, func() {
		changed <- struct{}{}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(file, []byte("CS100,Fundamentals v2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected change callback after source write")
	}
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "courses.csv")
	if err := os.WriteFile(file, []byte("CS100,Fundamentals\n"), 0644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 4)
	w, err := New(file, 20*time.Millisecond, 600, func() {
		changed <- struct{}{}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.csv"), []byte("irrelevant\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
		t.Fatal("callback must not fire for sibling files")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_RateLimitDefersCallback(t *testing.T) {
	fired := make(chan struct{}, 4)
	w := &Watcher{
		// burst of one: the second flush hits the limiter and must be
		// retried, not dropped
		limiter:    util.NewLimiter(20, 1),
		retryDelay: 20 * time.Millisecond,
		onChange:   func() { fired <- struct{}{} },
	}
	defer w.Close()

	w.flushChange()
	w.flushChange()

	for i := 0; i < 2; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("expected callback %d to fire once the limiter refilled", i+1)
		}
	}
}

func TestWatcher_CloseStopsDeferredRetry(t *testing.T) {
	fired := make(chan struct{}, 4)
	w := &Watcher{
		// zero-burst limiter rejects everything, so the flush only ever
		// re-arms
		limiter:    util.NewLimiter(0, 0),
		retryDelay: 10 * time.Millisecond,
		onChange:   func() { fired <- struct{}{} },
	}

	w.flushChange()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Fatal("callback must not fire after Close")
	case <-time.After(100 * time.Millisecond):
	}
}
