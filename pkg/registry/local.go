package registry

import (
	"context"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"

	"github.com/matzehuels/cratediff/pkg/cargo"
	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/errors"
)

// VCSInfoFile is written by `cargo package` into every crate archive.
const VCSInfoFile = ".cargo_vcs_info.json"

// Local answers registry questions with `cargo info` and the unpacked
// sources below root (<cargo home>/registry/src/index.crates.io-*).
type Local struct {
	root   string
	runner CargoRunner
	tags   TagResolver
	logger *log.Logger
}

var _ deps.RegistryProvider = (*Local)(nil)

// NewLocal creates a Local provider. tags may be nil to disable the
// release-tag fallback for commit hashes.
func NewLocal(root string, runner CargoRunner, tags TagResolver, logger *log.Logger) *Local {
	if logger == nil {
		logger = log.Default()
	}
	return &Local{root: root, runner: runner, tags: tags, logger: logger}
}

// Root returns the registry source directory.
func (l *Local) Root() string { return l.root }

func spec(name string, v *semver.Version) string {
	if v == nil {
		return name
	}
	return name + "@" + v.String()
}

func (l *Local) info(ctx context.Context, name string, v *semver.Version) (cargo.Info, error) {
	out, err := l.runner.Run(ctx, "info", spec(name, v))
	if err != nil {
		return cargo.Info{}, errors.Wrap(errors.ErrCodeLookupFailed, err, "cargo info %s", spec(name, v))
	}
	return cargo.ParseInfo(out)
}

// LatestOrPinned implements deps.RegistryProvider. Without a version the
// latest published one is returned and its sources are fetched as well.
func (l *Local) LatestOrPinned(ctx context.Context, name string, v *semver.Version) (info deps.CrateInfo, err error) {
	defer track(ctx, "cargo", KindVersion)(&err)

	ci, err := l.info(ctx, name, v)
	info.Repository = ci.Repository
	if err != nil {
		return info, err
	}
	info.Version = ci.Pick(v != nil)
	if info.Version == nil {
		return info, errors.New(errors.ErrCodeLookupFailed, "no version in cargo info output for %s", spec(name, v))
	}

	// cargo info only downloads the version it describes; inside a
	// workspace that is the locked one, not the latest.
	if v == nil && !info.Version.Equal(ci.Version) {
		if _, err := l.runner.Run(ctx, "info", spec(name, info.Version)); err != nil {
			l.logger.Debug("cannot fetch latest sources", "crate", name, "version", info.Version, "err", err)
		}
	}
	return info, nil
}

// Repository implements deps.RegistryProvider.
func (l *Local) Repository(ctx context.Context, name string, v *semver.Version) (repo string, err error) {
	defer track(ctx, "cargo", KindRepository)(&err)

	ci, err := l.info(ctx, name, v)
	if ci.Repository != "" {
		return ci.Repository, nil
	}
	if err != nil {
		return "", err
	}
	return "", errors.New(errors.ErrCodeNotFound, "no repository for %s", spec(name, v))
}

// SourcePath implements deps.RegistryProvider. Missing sources are fetched
// with `cargo info name@version`.
func (l *Local) SourcePath(ctx context.Context, name string, v *semver.Version) (dir string, err error) {
	defer track(ctx, "cargo", KindSource)(&err)

	if v == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "source path of %s needs a version", name)
	}
	if l.root == "" {
		return "", errors.New(errors.ErrCodeNotFound, "no local registry configured")
	}
	dir = filepath.Join(l.root, name+"-"+v.String())
	if isDir(dir) {
		return dir, nil
	}
	if _, err := l.runner.Run(ctx, "info", spec(name, v)); err != nil {
		return "", errors.Wrap(errors.ErrCodeLookupFailed, err, "cannot fetch sources of %s", spec(name, v))
	}
	if !isDir(dir) {
		return "", errors.New(errors.ErrCodeNotFound, "sources of %s not found in %s", spec(name, v), l.root)
	}
	return dir, nil
}

// CommitHash implements deps.RegistryProvider. The hash comes from the
// archive's VCS info file, or from a release tag when that file is absent
// and a tag resolver is configured.
func (l *Local) CommitHash(ctx context.Context, name string, v *semver.Version) (hash string, err error) {
	defer track(ctx, "cargo", KindHash)(&err)

	if v == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "commit hash of %s needs a version", name)
	}
	dir, err := l.SourcePath(ctx, name, v)
	if err == nil {
		if hash, ok := readVCSHash(filepath.Join(dir, VCSInfoFile)); ok {
			return hash, nil
		}
		l.logger.Debug("no commit hash in vcs info", "crate", name, "version", v)
	}

	if l.tags == nil {
		if err != nil {
			return "", err
		}
		return "", errors.New(errors.ErrCodeNotFound, "%s has no %s", spec(name, v), VCSInfoFile)
	}
	repo, err := l.Repository(ctx, name, v)
	if err != nil {
		return "", err
	}
	return l.tags.Resolve(ctx, repo, name, v.String())
}

func readVCSHash(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	sha := gjson.GetBytes(data, "git.sha1")
	if !sha.Exists() || sha.String() == "" {
		return "", false
	}
	return sha.String(), true
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
