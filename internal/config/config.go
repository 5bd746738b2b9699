// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by all commands
type Config struct {
	Addr           string        `env:"TIERMAKER_ADDR" envDefault:":8080"`
	DBPath         string        `env:"TIERMAKER_DB"`
	ScratchDir     string        `env:"TIERMAKER_SCRATCH_DIR"` // empty = fresh temp dir per session
	LogLevel       string        `env:"TIERMAKER_LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"TIERMAKER_LOG_FORMAT" envDefault:"console"`
	ScrapeTimeout  time.Duration `env:"TIERMAKER_SCRAPE_TIMEOUT" envDefault:"15s"`
	UserAgent      string        `env:"TIERMAKER_USER_AGENT" envDefault:"Mozilla/5.0 (X11; Linux x86_64) tiermaker"`
	AllowedOrigins []string      `env:"TIERMAKER_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:*,tauri://localhost"`
}

// Load parses Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
