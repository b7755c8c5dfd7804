package config

import (
	"fmt"
	"strings"

	"github.com/cognicore/textlens/pkg/textlens/stoplist"
)

// Loader loads the configuration file and the optional stoplist file
type Loader struct {
	ConfigPath   string
	StoplistPath string
}

// Components holds the loaded configuration and the components built from it
type Components struct {
	Config    Config
	StopWords *stoplist.Holder
}

// Load reads the configured files and returns initialized components.
// A missing ConfigPath means defaults. StoplistPath overrides the path
// named in the config file.
func (l *Loader) Load() (*Components, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		loaded, err := LoadConfig(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if l.StoplistPath != "" {
		cfg.StoplistPath = l.StoplistPath
	}
	return Resolve(cfg)
}

// Resolve validates cfg, merges the stoplist file named by
// cfg.StoplistPath into cfg.StopWords, and builds the components.
func Resolve(cfg Config) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	raw := cfg.StopWords
	if cfg.StoplistPath != "" {
		sl, err := LoadStoplist(cfg.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		raw = joinRaw(raw, sl.Raw())
	}
	cfg.StopWords = raw

	return &Components{
		Config:    cfg,
		StopWords: stoplist.NewHolder(raw),
	}, nil
}

func joinRaw(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "," + b
}
