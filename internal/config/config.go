// Package config loads server settings from a YAML file and PORTFOLIO_*
// environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/logging"
)

// EnvPrefix prefixes every environment override. Nested keys use a double
// underscore: PORTFOLIO_ADMIN__USERNAME sets admin.username.
const EnvPrefix = "PORTFOLIO_"

// Config is the full server configuration.
type Config struct {
	Port     int    `koanf:"port" yaml:"port"`
	Mode     string `koanf:"mode" yaml:"mode"` // gin mode: debug, release, test
	BasePath string `koanf:"base_path" yaml:"base_path"`

	DataDir   string `koanf:"data_dir" yaml:"data_dir"`
	ImageDir  string `koanf:"image_dir" yaml:"image_dir"`
	PDFDir    string `koanf:"pdf_dir" yaml:"pdf_dir"`
	StaticDir string `koanf:"static_dir" yaml:"static_dir"`

	PlaceholderImage string   `koanf:"placeholder_image" yaml:"placeholder_image"`
	DefaultCV        string   `koanf:"default_cv" yaml:"default_cv"`
	DefaultGroups    []string `koanf:"default_groups" yaml:"default_groups"`

	Watch         bool          `koanf:"watch" yaml:"watch"`
	WatchDebounce time.Duration `koanf:"watch_debounce" yaml:"watch_debounce"`

	Site    SiteConfig     `koanf:"site" yaml:"site"`
	Visits  VisitsConfig   `koanf:"visits" yaml:"visits"`
	Admin   AdminConfig    `koanf:"admin" yaml:"admin"`
	Log     logging.Config `koanf:"log" yaml:"log"`
	Build   BuildConfig    `koanf:"build" yaml:"build"`
	Metrics bool           `koanf:"metrics" yaml:"metrics"`
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	Title  string `koanf:"title" yaml:"title"`
	Author string `koanf:"author" yaml:"author"`
}

// VisitsConfig controls the visitor log.
type VisitsConfig struct {
	Enabled      bool          `koanf:"enabled" yaml:"enabled"`
	DatabasePath string        `koanf:"database_path" yaml:"database_path"`
	Retention    time.Duration `koanf:"retention" yaml:"retention"`
}

// AdminConfig holds the admin login.
type AdminConfig struct {
	Username string `koanf:"username" yaml:"username"`
	Password string `koanf:"password" yaml:"password"`
	// LoginsPerMinute limits login attempts across all clients.
	LoginsPerMinute int `koanf:"logins_per_minute" yaml:"logins_per_minute"`
}

// BuildConfig controls the external build wrapper.
type BuildConfig struct {
	BaseEnv string `koanf:"base_env" yaml:"base_env"`
}

// Load reads path (when it exists) over the defaults, then applies
// environment overrides. The plain PORT variable is honored last.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "reading config %s", path)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "accessing config %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "loading env overrides")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, errors.Errorf("invalid PORT %q", port)
		}
		cfg.Port = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks the values that would otherwise fail at startup.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("port %d out of range", c.Port)
	}
	switch c.Mode {
	case "debug", "release", "test":
	default:
		return errors.Errorf("invalid mode %q: must be one of debug, release, test", c.Mode)
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.Visits.Enabled && c.Visits.DatabasePath == "" {
		return errors.New("visits.database_path is required when visits are enabled")
	}
	if c.Visits.Retention < 0 {
		return errors.New("visits.retention must be non-negative")
	}
	if c.Admin.LoginsPerMinute < 0 {
		return errors.New("admin.logins_per_minute must be non-negative")
	}
	return nil
}

// Save writes c to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "writing config to %s", path)
	}
	return nil
}
