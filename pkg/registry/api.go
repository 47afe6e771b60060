package registry

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/integrations"
	"github.com/matzehuels/cratediff/pkg/integrations/crates"
)

// API answers version and repository questions from the crates.io API.
// Source and commit questions go to local, which may be nil when only
// direct diffs in comparison-link mode are needed.
type API struct {
	client *crates.Client
	local  deps.RegistryProvider
}

var _ deps.RegistryProvider = (*API)(nil)

// NewAPI creates an API provider.
func NewAPI(client *crates.Client, local deps.RegistryProvider) *API {
	return &API{client: client, local: local}
}

// LatestOrPinned implements deps.RegistryProvider. A pinned version must
// have been published; yanked versions are still accepted.
func (a *API) LatestOrPinned(ctx context.Context, name string, v *semver.Version) (info deps.CrateInfo, err error) {
	defer track(ctx, "crates.io", KindVersion)(&err)

	ci, err := a.client.FetchCrate(ctx, name, false)
	if err != nil {
		return info, apiError(err, name)
	}
	info.Repository = repositoryOf(ci)

	if v != nil {
		if _, err := a.client.FetchVersion(ctx, name, v.String(), false); err != nil {
			return info, apiError(err, spec(name, v))
		}
		info.Version = v
		return info, nil
	}

	latest, err := semver.StrictNewVersion(ci.Version)
	if err != nil {
		return info, errors.Wrap(errors.ErrCodeLookupFailed, err, "crates.io reports invalid version %q for %s", ci.Version, name)
	}
	info.Version = latest
	return info, nil
}

// Repository implements deps.RegistryProvider. crates.io keeps one
// repository per crate, so the version is ignored.
func (a *API) Repository(ctx context.Context, name string, _ *semver.Version) (repo string, err error) {
	defer track(ctx, "crates.io", KindRepository)(&err)

	ci, err := a.client.FetchCrate(ctx, name, false)
	if err != nil {
		return "", apiError(err, name)
	}
	if repo := repositoryOf(ci); repo != "" {
		return repo, nil
	}
	return "", errors.New(errors.ErrCodeNotFound, "no repository for %s", name)
}

// CommitHash implements deps.RegistryProvider.
func (a *API) CommitHash(ctx context.Context, name string, v *semver.Version) (string, error) {
	if a.local == nil {
		return "", errors.New(errors.ErrCodeUnsupported, "commit hashes need a local registry")
	}
	return a.local.CommitHash(ctx, name, v)
}

// SourcePath implements deps.RegistryProvider.
func (a *API) SourcePath(ctx context.Context, name string, v *semver.Version) (string, error) {
	if a.local == nil {
		return "", errors.New(errors.ErrCodeUnsupported, "crate sources need a local registry")
	}
	return a.local.SourcePath(ctx, name, v)
}

func repositoryOf(ci *crates.CrateInfo) string {
	if ci.Repository != "" {
		return ci.Repository
	}
	if strings.HasPrefix(ci.HomePage, githubPrefix) {
		parts := strings.Split(ci.HomePage, "/")
		if len(parts) >= 5 {
			return strings.Join(parts[:5], "/")
		}
	}
	return ""
}

const githubPrefix = "https://github.com/"

// apiError codes a crates.io client failure by its sentinel.
func apiError(err error, what string) error {
	code := errors.ErrCodeLookupFailed
	switch {
	case stderrors.Is(err, integrations.ErrNotFound):
		code = errors.ErrCodeNotFound
	case stderrors.Is(err, integrations.ErrNetwork):
		code = errors.ErrCodeNetwork
	}
	return errors.Wrap(code, err, "crates.io lookup of %s", what)
}
