// # cmd/courseplan/app.go
package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"

	"courseplan/internal/catalog"
	"courseplan/internal/config"
	"courseplan/internal/core/errors"
	"courseplan/internal/core/ports"
	"courseplan/internal/data/store"
	"courseplan/internal/report"
	"courseplan/internal/shared/observability"
	"courseplan/internal/watcher"
)

// App owns the configured store and threads it through every operation.
// There is no package-level catalog state.
type App struct {
	Config *config.Config
	Store  ports.CourseStore

	watcher       *watcher.Watcher
	metricsServer *observability.Server

	mu         sync.Mutex
	loaded     bool
	lastLoad   catalog.LoadResult
	teaProgram *tea.Program
}

func NewApp(cfg *config.Config) (*App, error) {
	var st ports.CourseStore
	switch cfg.Store.Backend {
	case "sqlite":
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeInternal, "open sqlite store"),
				errors.CtxBackend, cfg.Store.Backend)
		}
		st = s
	default:
		st = catalog.NewMemory()
	}

	return &App{Config: cfg, Store: st}, nil
}

func (a *App) Close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			slog.Warn("failed to close watcher", "error", err)
		}
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Stop(context.Background()); err != nil {
			slog.Warn("failed to stop metrics server", "error", err)
		}
	}
	if err := a.Store.Close(); err != nil {
		slog.Warn("failed to close store", "error", err)
	}
}

// LoadCatalog loads the given file (the configured one when path is empty)
// into the store. The store keeps its prior contents on any failure.
func (a *App) LoadCatalog(path string) (catalog.LoadResult, error) {
	if strings.TrimSpace(path) == "" {
		path = a.Config.CourseFile
	}

	result, err := catalog.Load(path, a.Store)
	if err != nil {
		slog.Error("catalog load failed", "source", path, "error", err)
		return result, err
	}

	a.mu.Lock()
	a.loaded = true
	a.lastLoad = result
	program := a.teaProgram
	a.mu.Unlock()

	if h, ok := a.Store.(ports.LoadHistory); ok {
		if err := h.RecordLoad(result); err != nil {
			slog.Warn("failed to record load history", "error", err)
		}
	}

	slog.Info("catalog loaded",
		"load_id", result.LoadID,
		"source", result.Source,
		"records", result.Records,
		"skipped", result.Skipped,
		"duration", result.Duration)

	if program != nil {
		program.Send(coursesReloadedMsg{})
	}

	return result, nil
}

func (a *App) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

func (a *App) LastLoad() catalog.LoadResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastLoad
}

// ListCourses renders the sorted catalog, optionally filtered by a glob
// pattern matched against course numbers.
func (a *App) ListCourses(pattern string) (string, error) {
	courses, err := a.Store.AllSorted()
	if err != nil {
		return "", err
	}

	if pattern != "" {
		g, err := glob.Compile(catalog.Normalize(pattern))
		if err != nil {
			return "", errors.Wrap(err, errors.CodeValidationError, "invalid course pattern")
		}
		filtered := courses[:0]
		for _, c := range courses {
			if g.Match(c.Number) {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	return report.CourseList(courses), nil
}

// CourseDetail renders one course. A lookup miss yields the fixed
// not-found message, not an error; only store failures propagate.
func (a *App) CourseDetail(number string) (string, error) {
	c, err := a.Store.Find(number)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			observability.LookupsTotal.WithLabelValues("miss").Inc()
			return report.NotFound(), nil
		}
		return "", err
	}

	observability.LookupsTotal.WithLabelValues("hit").Inc()
	return report.CourseDetail(c), nil
}

// StartWatcher begins reloading the catalog whenever its source changes.
func (a *App) StartWatcher() error {
	w, err := watcher.New(a.Config.CourseFile, a.Config.Watch.Debounce, a.Config.Watch.MaxReloadsPerMinute, func() {
		if _, err := a.LoadCatalog(""); err != nil {
			slog.Warn("reload after file change failed, keeping previous catalog", "error", err)
		}
	})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Close()
		return err
	}

	a.watcher = w
	return nil
}

// StartMetrics serves /metrics and /health when an address is configured.
func (a *App) StartMetrics() error {
	if a.Config.Metrics.Addr == "" {
		return nil
	}

	a.metricsServer = observability.NewServer(a.Config.Metrics.Addr, func() observability.HealthStatus {
		n, err := a.Store.Count()
		status := "up"
		if err != nil {
			status = "down"
		}
		return observability.HealthStatus{
			Status:  status,
			Backend: a.Config.Store.Backend,
			Courses: n,
		}
	})
	return a.metricsServer.Start(context.Background())
}
