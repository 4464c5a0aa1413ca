package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration. Every field can be
// overridden by a CLI flag; the file only supplies defaults.
type Config struct {
	// Templates is the path of the YAML template store.
	Templates string `yaml:"templates" json:"templates"`

	// Output is where the export command writes the .ics document;
	// "-" means stdout.
	Output string `yaml:"output" json:"output"`

	// Timezone is the IANA zone applied to templates that carry none.
	Timezone string `yaml:"timezone" json:"timezone"`

	// HorizonDays is the default width of the expansion window when the
	// expand command is run without an explicit end date.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`
}

// DefaultConfig returns the in-memory defaults.
func DefaultConfig() *Config {
	return &Config{
		Templates:   "events.yaml",
		Output:      "calendar.ics",
		Timezone:    "UTC",
		HorizonDays: 30,
	}
}

// Normalize fills missing/zero values so partially-filled configs still
// behave correctly.
func (c *Config) Normalize() {
	if c.Templates == "" {
		c.Templates = "events.yaml"
	}
	if c.Output == "" {
		c.Output = "calendar.ics"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 30
	}
}

// Load reads configuration from the given YAML path. On first run (file
// absent) a default config is written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename) with 0600
// permissions, creating the parent directory when needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".calmaker-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
