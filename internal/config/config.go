// Package config loads server configuration from an optional YAML file with
// FPL_MCP_* environment overrides.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Cache refresh policies for payloads persisted by a previous run.
const (
	PolicyTrustDisk      = "trust-disk"
	PolicyRefreshOnStart = "refresh-on-start"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	MCPPath string `yaml:"mcp_path"`
}

type UpstreamConfig struct {
	BaseURL           string        `yaml:"base_url"`
	UserAgent         string        `yaml:"user_agent"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

type CacheConfig struct {
	Dir    string `yaml:"dir"`
	Policy string `yaml:"policy"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:    ":8080",
			MCPPath: "/mcp",
		},
		Upstream: UpstreamConfig{
			BaseURL:           "https://fantasy.premierleague.com/api",
			UserAgent:         "fpl-query-mcp/1.0",
			Timeout:           20 * time.Second,
			RequestsPerSecond: 4,
			Burst:             2,
		},
		Cache: CacheConfig{
			Dir:    "data/cache",
			Policy: PolicyTrustDisk,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads path (when non-empty) over the built-in defaults and then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "FPL_MCP_ADDR")
	setString(&cfg.Server.MCPPath, "FPL_MCP_PATH")
	setString(&cfg.Upstream.BaseURL, "FPL_MCP_BASE_URL")
	setString(&cfg.Upstream.UserAgent, "FPL_MCP_USER_AGENT")
	setDuration(&cfg.Upstream.Timeout, "FPL_MCP_TIMEOUT")
	setString(&cfg.Cache.Dir, "FPL_MCP_CACHE_DIR")
	setString(&cfg.Cache.Policy, "FPL_MCP_CACHE_POLICY")
	setString(&cfg.Logging.Level, "FPL_MCP_LOG_LEVEL")
	setString(&cfg.Logging.File, "FPL_MCP_LOG_FILE")
	setBool(&cfg.Metrics.Enabled, "FPL_MCP_METRICS_ENABLED")
}

func (c Config) validate() error {
	switch c.Cache.Policy {
	case PolicyTrustDisk, PolicyRefreshOnStart:
	default:
		return errors.Newf("cache.policy must be %q or %q, got %q",
			PolicyTrustDisk, PolicyRefreshOnStart, c.Cache.Policy)
	}
	if c.Upstream.Timeout <= 0 {
		return errors.New("upstream.timeout must be positive")
	}
	if c.Upstream.RequestsPerSecond <= 0 {
		return errors.New("upstream.requests_per_second must be positive")
	}
	if strings.TrimSpace(c.Cache.Dir) == "" {
		return errors.New("cache.dir is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
