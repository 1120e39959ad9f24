// # cmd/courseplan/main.go
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"courseplan/internal/config"
)

var (
	configPath = flag.String("config", "./courseplan.toml", "Path to config file")
	courseFile = flag.String("file", "", "Course catalog file (overrides config)")
	listMode   = flag.Bool("list", false, "Load, print the sorted course list, and exit (optional glob pattern argument)")
	courseFlag = flag.String("course", "", "Load, print one course's detail, and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	watch      = flag.Bool("watch", false, "Reload the catalog when the source file changes")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("courseplan v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stderr
	if *ui {
		// In UI mode, avoid terminal logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else if f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600); err == nil {
			output = f
		} else {
			fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *courseFile != "" {
		cfg.CourseFile = *courseFile
	}
	if *watch {
		cfg.Watch.Enabled = true
	}

	if *listMode && *courseFlag != "" {
		fmt.Fprintln(os.Stderr, "--list and --course cannot be used together")
		os.Exit(1)
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// One-shot modes: load, answer, exit. A failed load is fatal here; a
	// missing course is reported but still exits zero.
	if *listMode {
		if _, err := app.LoadCatalog(""); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		listing, err := app.ListCourses(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Print(listing)
		os.Exit(0)
	}
	if *courseFlag != "" {
		if _, err := app.LoadCatalog(""); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		detail, err := app.CourseDetail(*courseFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Print(detail)
		os.Exit(0)
	}

	if err := app.StartMetrics(); err != nil {
		slog.Error("failed to start metrics server", "error", err)
		os.Exit(1)
	}

	if *ui {
		if _, err := app.LoadCatalog(""); err != nil {
			slog.Warn("initial load failed, starting with an empty catalog", "error", err)
		}
	}

	if cfg.Watch.Enabled {
		if err := app.StartWatcher(); err != nil {
			slog.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
	}

	if *ui {
		if err := app.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := app.RunShell(os.Stdin, os.Stdout); err != nil {
		slog.Error("shell error", "error", err)
		os.Exit(1)
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "courseplan", "courseplan.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "courseplan", "courseplan.log")
	}

	return "courseplan.log"
}
