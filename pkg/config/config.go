// Package config loads user configuration for openupm.
//
// Settings come from three layers, later ones winning: built-in defaults,
// the TOML file at [Path], and OPENUPM_* environment variables. Command-line
// flags are applied on top by the CLI.
//
//	registry = "https://package.openupm.com"
//	upstream = true
//	token = "..."
//
//	[cache]
//	backend = "file"   # file, redis or none
//	ttl = "5m"
//
//	[http]
//	timeout = "30s"
//	retries = 2
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/openupm/openupm-cli/pkg/cache"
	"github.com/openupm/openupm-cli/pkg/core/upm"
	errs "github.com/openupm/openupm-cli/pkg/errors"
)

const appName = "openupm"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the merged user configuration.
type Config struct {
	// Registry is the primary registry URL.
	Registry string `toml:"registry"`
	// Upstream lets requested packages unknown to Registry come from
	// UpstreamRegistry. Dependencies are always searched there.
	Upstream         bool   `toml:"upstream"`
	UpstreamRegistry string `toml:"upstream_registry"`

	Token      string `toml:"token"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	AlwaysAuth bool   `toml:"always_auth"`

	// EditorsDir overrides where installed editors are looked for.
	EditorsDir string `toml:"editors_dir"`

	Cache CacheConfig `toml:"cache"`
	HTTP  HTTPConfig  `toml:"http"`
}

// CacheConfig selects and tunes the packument cache.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	TTL      time.Duration `toml:"ttl"`
	RedisURL string        `toml:"redis_url"`
}

// HTTPConfig tunes registry requests.
type HTTPConfig struct {
	Timeout time.Duration `toml:"timeout"`
	Retries int           `toml:"retries"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Registry:         upm.OpenUPMRegistryURL,
		Upstream:         true,
		UpstreamRegistry: upm.UnityRegistryURL,
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     cache.DefaultTTL,
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
			Retries: cache.DefaultRetries,
		},
	}
}

// Path returns the configuration file location:
// $XDG_CONFIG_HOME/openupm/config.toml, falling back to ~/.config.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the file cache location: $XDG_CACHE_HOME/openupm,
// falling back to ~/.cache/openupm.
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the file at path over the defaults, then applies the
// environment. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadDefault loads the configuration from [Path].
func LoadDefault() (Config, error) {
	path, err := Path()
	if err != nil {
		path = ""
	}
	return Load(path)
}

// ApplyEnv overrides settings from OPENUPM_* variables looked up through
// getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("OPENUPM_REGISTRY"); v != "" {
		c.Registry = v
	}
	if v := getenv("OPENUPM_TOKEN"); v != "" {
		c.Token = v
	}
	if v := getenv("OPENUPM_CACHE"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("OPENUPM_REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := getenv("OPENUPM_EDITORS_DIR"); v != "" {
		c.EditorsDir = v
	}
	if v := getenv("OPENUPM_UPSTREAM"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "OPENUPM_UPSTREAM")
		}
		c.Upstream = b
	}
	return nil
}

// Validate checks registry URLs and the cache backend.
func (c Config) Validate() error {
	if err := errs.ValidateURL(c.Registry); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "registry")
	}
	if err := errs.ValidateURL(c.UpstreamRegistry); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "upstream_registry")
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidConfig, "cache.backend = %q requires cache.redis_url", CacheRedis)
		}
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache.backend %q", c.Cache.Backend)
	}
	if c.HTTP.Retries < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "http.retries must not be negative")
	}
	return nil
}

// auth returns credentials from the config, or nil when none are set.
func (c Config) auth() *upm.Auth {
	if c.Token == "" && c.Username == "" {
		return nil
	}
	return &upm.Auth{
		Token:      c.Token,
		Username:   c.Username,
		Password:   c.Password,
		AlwaysAuth: c.AlwaysAuth,
	}
}

// Primary returns the registry packages are installed from.
func (c Config) Primary() upm.Registry {
	return upm.NewRegistry(c.Registry, c.auth())
}

// Fallback returns the upstream registry and whether falling back to it is
// enabled.
func (c Config) Fallback() (upm.Registry, bool) {
	return upm.NewRegistry(c.UpstreamRegistry, nil), c.Upstream
}
