// Package config loads and validates the exporter configuration.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	// ArchiveRoot is the output directory tree holding all acquisitions.
	ArchiveRoot string `yaml:"archive_root"`

	// Instrument names the producing instrument; it keys the acquisition
	// directories and is stamped into every artifact.
	Instrument string `yaml:"instrument"`

	// StatePath is the resume-state file.
	StatePath string `yaml:"state_path"`

	// ArchiveVersion selects the output layout. Defaults to 4.0.0.
	ArchiveVersion string `yaml:"archive_version"`

	// TextfileDir is the node-exporter textfile-collector directory.
	// Optional; metrics are skipped entirely when unset.
	TextfileDir string `yaml:"textfile_dir"`

	Logging Logging `yaml:"logging"`

	// Stations maps station name to its source archive and metadata.
	// At least one station is required.
	Stations map[string]Station `yaml:"stations"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Station is one weather station's configuration section.
type Station struct {
	DBPath      string   `yaml:"db_path"`
	Longitude   *float64 `yaml:"longitude"`
	Latitude    *float64 `yaml:"latitude"`
	Description string   `yaml:"description"`
}

// Load reads the YAML configuration file at the given path, applies
// environment overrides, fills defaults, and validates required keys.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if cfg.ArchiveVersion == "" {
		cfg.ArchiveVersion = "4.0.0"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOREAS_ARCHIVE_ROOT"); v != "" {
		cfg.ArchiveRoot = v
	}
	if v := os.Getenv("BOREAS_STATE_PATH"); v != "" {
		cfg.StatePath = v
	}
	if v := os.Getenv("BOREAS_TEXTFILE_DIR"); v != "" {
		cfg.TextfileDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate enforces the required keys. Configuration problems are fatal at
// startup, before any state or output is touched.
func (c *Config) Validate() error {
	required := []struct {
		key, val string
	}{
		{"archive_root", c.ArchiveRoot},
		{"instrument", c.Instrument},
		{"state_path", c.StatePath},
	}
	for _, r := range required {
		if r.val == "" {
			return fmt.Errorf("missing configuration key: %s", r.key)
		}
	}

	if len(c.Stations) == 0 {
		return fmt.Errorf("no weather stations defined")
	}
	for name, st := range c.Stations {
		if st.DBPath == "" {
			return fmt.Errorf("missing configuration key: db_path for station %s", name)
		}
	}
	return nil
}

// StationNames returns the configured station names in sorted order, which
// fixes the processing and output order of every run.
func (c *Config) StationNames() []string {
	names := make([]string, 0, len(c.Stations))
	for name := range c.Stations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
