package filetext

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config configures an extraction Engine. The zero value works.
type Config struct {
	// MaxFileSize is the global ceiling in bytes (default 100 MB). Files
	// larger than this fail with TooLarge before classification.
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// MaxOutputChars truncates extracted text to this many characters,
	// appending a marker with the original length. 0 means unlimited.
	MaxOutputChars int `json:"max_output_chars" yaml:"max_output_chars"`

	// CategoryMaxSize overrides the per-category size ceilings.
	CategoryMaxSize map[Category]int64 `json:"category_max_size" yaml:"category_max_size"`

	// Disabled switches capabilities off for this deployment; categories
	// requiring one fail with MissingCapability.
	Disabled []Capability `json:"disabled_capabilities" yaml:"disabled_capabilities"`

	// EncodingHint, when set, is tried first by the encoding resolver.
	EncodingHint string `json:"encoding_hint" yaml:"encoding_hint"`

	// TempDir hosts conversion artifacts (default os.TempDir()).
	TempDir string `json:"temp_dir" yaml:"temp_dir"`

	// CacheSize bounds the classification LRU. 0 means the default (256);
	// negative disables caching.
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// Logger for debug/warn messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 100 * 1024 * 1024
	}
	if c.CacheSize == 0 {
		c.CacheSize = 256
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
