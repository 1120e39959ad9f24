// # internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	CourseFile string  `toml:"course_file"`
	Store      Store   `toml:"store"`
	Watch      Watch   `toml:"watch"`
	Metrics    Metrics `toml:"metrics"`
}

type Store struct {
	Backend string `toml:"backend"` // "memory" or "sqlite"
	Path    string `toml:"path"`
}

type Watch struct {
	Enabled             bool          `toml:"enabled"`
	Debounce            time.Duration `toml:"debounce"`
	MaxReloadsPerMinute int           `toml:"max_reloads_per_minute"`
}

type Metrics struct {
	Addr string `toml:"addr"` // empty disables the metrics server
}

func Default() *Config {
	return &Config{
		CourseFile: "courses.csv",
		Store:      Store{Backend: "memory", Path: "courseplan.db"},
		Watch:      Watch{Debounce: 500 * time.Millisecond, MaxReloadsPerMinute: 30},
	}
}

// Load reads the TOML config at path. A missing file is not an error; the
// built-in defaults cover the zero-config case.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, err
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxReloadsPerMinute <= 0 {
		cfg.Watch.MaxReloadsPerMinute = 30
	}
	if cfg.CourseFile == "" {
		cfg.CourseFile = "courses.csv"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "", "memory":
		c.Store.Backend = "memory"
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want memory or sqlite)", c.Store.Backend)
	}
	return nil
}
