package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/textlens/pkg/textlens/internalerr"
)

// Defaults applied by Load when a field is absent.
const (
	DefaultDatabase    = "textlens.db"
	DefaultEventBuffer = 256
	DefaultTopN        = 10
	MaxTopN            = 100
)

// Config is the on-disk configuration file (textlens.yaml).
type Config struct {
	// Database is a SQLite path, or ":memory:" for an ephemeral store.
	Database string `yaml:"database" mapstructure:"database"`
	// StopWords is the comma-delimited stop-word list.
	StopWords string `yaml:"stopwords" mapstructure:"stopwords"`
	// StoplistPath points at a YAML stoplist file whose terms are appended
	// to StopWords.
	StoplistPath string `yaml:"stoplist_file" mapstructure:"stoplist_file"`

	EventBuffer int    `yaml:"event_buffer" mapstructure:"event_buffer"`
	DefaultTopN int    `yaml:"default_top_n" mapstructure:"default_top_n"`
	LogLevel    string `yaml:"log_level" mapstructure:"log_level"`
}

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Database:    DefaultDatabase,
		EventBuffer: DefaultEventBuffer,
		DefaultTopN: DefaultTopN,
		LogLevel:    "info",
	}
}

// LoadConfig reads a YAML config file, fills defaults and validates it.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML bytes into a validated Config.
func ParseConfig(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %v: %w", err, internalerr.ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Database) == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.EventBuffer == 0 {
		cfg.EventBuffer = DefaultEventBuffer
	}
	if cfg.DefaultTopN == 0 {
		cfg.DefaultTopN = DefaultTopN
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.EventBuffer < 0 {
		return fmt.Errorf("event_buffer %d must not be negative: %w", c.EventBuffer, internalerr.ErrInvalidConfig)
	}
	if c.DefaultTopN < 1 || c.DefaultTopN > MaxTopN {
		return fmt.Errorf("default_top_n %d out of range 1..%d: %w", c.DefaultTopN, MaxTopN, internalerr.ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q: %w", c.LogLevel, internalerr.ErrInvalidConfig)
	}
	return nil
}

// Stoplist represents the stopword list file
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("decode stoplist: %v: %w", err, internalerr.ErrInvalidConfig)
	}

	return &sl, nil
}

// Raw joins the terms into the comma-delimited form used by the engine.
func (s *Stoplist) Raw() string {
	if s == nil {
		return ""
	}
	return strings.Join(s.Terms, ",")
}
