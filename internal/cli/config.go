package cli

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the tool's settings. Values come from the config file when
// present; otherwise the defaults apply.
type Config struct {
	// ExtractWorkers limits concurrent entry extractions.
	ExtractWorkers int `yaml:"extract_workers"`

	// MaxFileSize caps the size of entries read from archives, in bytes.
	// Zero applies the provider default (100 MiB).
	MaxFileSize uint32 `yaml:"max_file_size"`

	// FixedTimestamps stamps created entries with a fixed legacy timestamp
	// for byte-reproducible archives.
	FixedTimestamps bool `yaml:"fixed_timestamps"`
}

func DefaultConfig() *Config {
	return &Config{
		ExtractWorkers: 4,
	}
}

func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".wzarchive", "config.yaml")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.ExtractWorkers <= 0 {
		cfg.ExtractWorkers = DefaultConfig().ExtractWorkers
	}
	return cfg, nil
}

func (c *Config) Save() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
