package config

import (
	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration. CLI flags override these.
type Config struct {
	// Logging
	LogLevel  string `env:"SHAREPOOL_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"SHAREPOOL_LOG_FORMAT" envDefault:"console"`

	// Event store. Empty means in-memory only (nothing is persisted across
	// runs); otherwise a sqlite database path.
	DBPath string `env:"SHAREPOOL_DB" envDefault:""`

	// Format of dates in ingested CSV files. Must represent Jan 2, 2006.
	CsvDateFormat string `env:"SHAREPOOL_DATE_FORMAT" envDefault:"2006-01-02"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
