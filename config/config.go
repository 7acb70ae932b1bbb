package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the crashsig tool.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Match   MatchConfig   `yaml:"match"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// LibraryConfig controls which files make up the signature library.
type LibraryConfig struct {
	Includes   []string `yaml:"includes"`
	Excludes   []string `yaml:"excludes"`
	DiffWindow int      `yaml:"diff_window"` // extra frames considered by the stack diff
	CacheSize  int      `yaml:"cache_size"`  // parsed signatures kept in memory
}

// MatchConfig holds matching configuration.
type MatchConfig struct {
	Workers          int     `yaml:"workers"`
	TopK             int     `yaml:"top_k"`
	MaxDistanceRatio float64 `yaml:"max_distance_ratio"` // drop closest candidates above this ratio (0 = disabled)
}

// OutputConfig holds output configuration.
type OutputConfig struct {
	Format string `yaml:"format"` // "text" or "json"
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Includes:   []string{"**/*.signature"},
			Excludes:   []string{"**/.git/**", "**/.crashsig/**"},
			DiffWindow: 3,
			CacheSize:  1024,
		},
		Match: MatchConfig{
			Workers: 4,
			TopK:    5,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for crashsig.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "crashsig.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".crashsig", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LibraryDBPath returns the path to the signature library index.
func LibraryDBPath(dir string) string {
	return filepath.Join(dir, ".crashsig", "library.db")
}

// EnsureDir ensures the .crashsig directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".crashsig"), 0755)
}
