package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/cratediff/pkg/cache"
	"github.com/matzehuels/cratediff/pkg/cargo"
	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/integrations/crates"
	"github.com/matzehuels/cratediff/pkg/integrations/github"
	"github.com/matzehuels/cratediff/pkg/lockfile"
	"github.com/matzehuels/cratediff/pkg/pipeline"
	"github.com/matzehuels/cratediff/pkg/registry"
	"github.com/matzehuels/cratediff/pkg/vcs"
)

// cacheDir returns $XDG_CACHE_HOME/cratediff or ~/.cache/cratediff.
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// fileCacheDir is the configured cache directory or the default one.
func fileCacheDir(cfg *Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// openCache opens the persistent lookup cache. disabled (--no-cache) wins
// over the configured backend.
func openCache(ctx context.Context, cfg *Config, disabled bool) (cache.Cache, error) {
	logger := loggerFromContext(ctx)
	if disabled || cfg.Cache.Backend == cacheNone {
		logger.Debug("lookup cache disabled")
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == cacheRedis {
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open redis cache")
		}
		logger.Debug("lookup cache", "backend", cacheRedis)
		return c, nil
	}

	dir, err := fileCacheDir(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache directory")
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open file cache")
	}
	logger.Debug("lookup cache", "backend", cacheFile, "dir", dir)
	return c, nil
}

// newRunner wires the pipeline collaborators for cfg.
func (c *CLI) newRunner(cfg *Config, store cache.Cache) *pipeline.Runner {
	runner := cargo.NewRunner(cfg.CargoPath, c.Logger)
	return pipeline.NewRunner(c.newMetadata(cfg, runner), c.registryFactory(cfg, runner, store), c.Logger)
}

func (c *CLI) newMetadata(cfg *Config, runner *cargo.Runner) deps.MetadataProvider {
	if cfg.Metadata == metadataLockfile {
		// Without a registry root nested lockfile diffs have no sources to read.
		root, err := registry.Root(cfg.RegistryPath, nil, cfg.CargoHome, c.Logger)
		if err != nil {
			c.Logger.Debug("no local registry for lockfile metadata", "err", err)
		}
		return lockfile.New(root, c.Logger)
	}
	return cargo.NewMetadata(runner, c.Logger)
}

// registryFactory locates the registry source directory once the
// workspace graph is known. A missing registry is not fatal: cargo info
// still answers version and repository lookups, only source-based lookups
// degrade.
func (c *CLI) registryFactory(cfg *Config, runner *cargo.Runner, store cache.Cache) pipeline.RegistryFactory {
	return func(ctx context.Context, ws *depgraph.Graph) (deps.RegistryProvider, error) {
		root, err := registry.Root(cfg.RegistryPath, ws, cfg.CargoHome, c.Logger)
		if err != nil {
			c.Logger.Debug("no local registry sources", "err", err)
			root = ""
		}

		var tags registry.TagResolver
		if cfg.GitTags {
			tags = vcs.NewTagResolver(c.tagLister(cfg, store), c.Logger)
		}

		var p deps.RegistryProvider = registry.NewLocal(root, runner, tags, c.Logger)
		if cfg.Registry == registryCratesIO {
			p = registry.NewAPI(crates.NewClient(store, cfg.Cache.TTL), p)
		}
		keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Registry)
		return registry.NewMemo(p, store, keyer, c.Logger), nil
	}
}

// tagLister lists release tags with go-git, or through the GitHub API for
// github.com repositories when configured.
func (c *CLI) tagLister(cfg *Config, store cache.Cache) vcs.Lister {
	if cfg.TagsSource == tagsGitHub {
		return github.NewClient(store, cfg.Cache.TTL, cfg.GitHubToken)
	}
	return vcs.RemoteLister{}
}
