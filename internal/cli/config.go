package cli

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/cratediff/pkg/errors"
)

// Registry and metadata backends.
const (
	registryCargo    = "cargo"
	registryCratesIO = "crates.io"

	metadataCargo    = "cargo"
	metadataLockfile = "lockfile"

	tagsGit    = "git"
	tagsGitHub = "github"

	cacheNone  = "none"
	cacheFile  = "file"
	cacheRedis = "redis"
)

// envPrefix prefixes every environment override (CRATEDIFF_CACHE_BACKEND, ...).
const envPrefix = "CRATEDIFF"

// Config is the merged configuration of a command: defaults, then the
// config file, then environment, then flags.
type Config struct {
	ManifestPath  string        `mapstructure:"manifest_path"`
	CargoPath     string        `mapstructure:"cargo_path"`
	CargoHome     string        `mapstructure:"cargo_home"`
	RegistryPath  string        `mapstructure:"registry_path"`
	Registry      string        `mapstructure:"registry"`
	Metadata      string        `mapstructure:"metadata"`
	GitTags       bool          `mapstructure:"git_tags"`
	TagsSource    string        `mapstructure:"tags_source"`
	GitHubToken   string        `mapstructure:"github_token"`
	LookupTimeout time.Duration `mapstructure:"lookup_timeout"`
	Cache         CacheConfig   `mapstructure:"cache"`
	Serve         ServeConfig   `mapstructure:"serve"`
}

// CacheConfig selects the persistent lookup cache.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend"`
	Dir      string        `mapstructure:"dir"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ServeConfig configures the HTTP service.
type ServeConfig struct {
	Addr    string        `mapstructure:"addr"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("manifest_path", ".")
	v.SetDefault("cargo_path", "")
	v.SetDefault("cargo_home", "")
	v.SetDefault("registry_path", "")
	v.SetDefault("registry", registryCargo)
	v.SetDefault("metadata", metadataCargo)
	v.SetDefault("git_tags", false)
	v.SetDefault("tags_source", tagsGit)
	v.SetDefault("github_token", "")
	v.SetDefault("lookup_timeout", 2*time.Minute)
	v.SetDefault("cache.backend", cacheFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("serve.addr", ":8080")
	v.SetDefault("serve.timeout", 5*time.Minute)
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"manifest-path": "manifest_path",
	"cargo-path":    "cargo_path",
	"registry":      "registry",
	"metadata":      "metadata",
	"git-tags":      "git_tags",
	"tags-source":   "tags_source",
	"addr":          "serve.addr",
}

// loadConfig builds the configuration. file may be empty, in which case
// cratediff.{yaml,toml} is looked up in the working directory and in the
// user config directory; a missing file is not an error then.
func loadConfig(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(appName)
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !stderrors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// cargo's own variables, below the prefixed ones
	_ = v.BindEnv("cargo_path", envPrefix+"_CARGO_PATH", "CARGO")
	_ = v.BindEnv("cargo_home", envPrefix+"_CARGO_HOME", "CARGO_HOME")
	_ = v.BindEnv("github_token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")

	if flags != nil {
		for flag, key := range flagKeys {
			if f := flags.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "bind flag %s", flag)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if !slices.Contains([]string{registryCargo, registryCratesIO}, c.Registry) {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid registry %q (must be one of: cargo, crates.io)", c.Registry)
	}
	if !slices.Contains([]string{metadataCargo, metadataLockfile}, c.Metadata) {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid metadata %q (must be one of: cargo, lockfile)", c.Metadata)
	}
	if !slices.Contains([]string{tagsGit, tagsGitHub}, c.TagsSource) {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid tags_source %q (must be one of: git, github)", c.TagsSource)
	}
	if !slices.Contains([]string{cacheNone, cacheFile, cacheRedis}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid cache backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.LookupTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "lookup_timeout must not be negative")
	}
	return nil
}

// configDir returns $XDG_CONFIG_HOME/cratediff or ~/.config/cratediff.
func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
