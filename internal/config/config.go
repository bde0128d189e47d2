package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL      = "https://storage.googleapis.com/oss-fuzz-introspector"
	DefaultSnapshotDate = "20240131"
	DefaultTimeout      = 5 * time.Second
	DefaultContextLines = 10
)

var snapshotDatePattern = regexp.MustCompile(`^\d{8}$`)

type Config struct {
	Introspector struct {
		BaseURL      string        `yaml:"base_url"`
		SnapshotDate string        `yaml:"snapshot_date"` // YYYYMMDD
		Timeout      time.Duration `yaml:"timeout"`
	} `yaml:"introspector"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text, plain or json
	} `yaml:"logging"`
	Output struct {
		Format       string `yaml:"format"`        // text or json
		ContextLines int    `yaml:"context_lines"` // fallback snippet radius around source_line
	} `yaml:"output"`
}

// Default returns a config with every field populated.
func Default() *Config {
	var cfg Config
	cfg.Output.ContextLines = DefaultContextLines
	cfg.applyDefaults()
	return &cfg
}

// LoadConfig reads path (a missing file is not an error), then applies
// defaults and CTXPROBE_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config over the defaults so absent keys keep them
	cfg := *Default()
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, errors.Errorf("failed to parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, errors.Errorf("failed to read %s: %w", path, err)
	}

	// 3. Override with Environment Variables if present
	if v := os.Getenv("CTXPROBE_BASE_URL"); v != "" {
		cfg.Introspector.BaseURL = v
	}
	if v := os.Getenv("CTXPROBE_SNAPSHOT_DATE"); v != "" {
		cfg.Introspector.SnapshotDate = v
	}
	if v := os.Getenv("CTXPROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, errors.Errorf("CTXPROBE_TIMEOUT: %w", err)
		}
		cfg.Introspector.Timeout = d
	}
	if v := os.Getenv("CTXPROBE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CTXPROBE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("CTXPROBE_OUTPUT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("CTXPROBE_CONTEXT_LINES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Errorf("CTXPROBE_CONTEXT_LINES: %w", err)
		}
		cfg.Output.ContextLines = n
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Introspector.BaseURL == "" {
		c.Introspector.BaseURL = DefaultBaseURL
	}
	if c.Introspector.SnapshotDate == "" {
		c.Introspector.SnapshotDate = DefaultSnapshotDate
	}
	if c.Introspector.Timeout <= 0 {
		c.Introspector.Timeout = DefaultTimeout
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
}

func (c *Config) Validate() error {
	if !snapshotDatePattern.MatchString(c.Introspector.SnapshotDate) {
		return errors.Errorf("snapshot_date %q: expected YYYYMMDD", c.Introspector.SnapshotDate)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return errors.Errorf("output format %q: expected text or json", c.Output.Format)
	}
	if c.Output.ContextLines < 0 {
		return errors.Errorf("context_lines %d: must not be negative", c.Output.ContextLines)
	}
	return nil
}
