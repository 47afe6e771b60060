// Package registry implements [deps.RegistryProvider] for crates.io.
//
// Two backends exist:
//
//   - [Local] shells out to `cargo info`, which also downloads crate
//     sources into the local registry, and reads commit hashes from
//     .cargo_vcs_info.json.
//   - [API] asks the crates.io HTTP API for versions and repositories and
//     delegates source access to a Local.
//
// [Memo] wraps either backend so every (kind, crate, version) question is
// answered at most once per run, optionally backed by a persistent
// [cache.Cache].
//
// [deps.RegistryProvider]: github.com/matzehuels/cratediff/pkg/deps.RegistryProvider
// [cache.Cache]: github.com/matzehuels/cratediff/pkg/cache.Cache
package registry

import (
	"context"
	"time"

	"github.com/matzehuels/cratediff/pkg/observability"
)

// Lookup kinds, used for cache keys and metrics.
const (
	KindVersion    = "version"
	KindHash       = "hash"
	KindRepository = "repository"
	KindSource     = "source"
)

// CargoRunner runs cargo subcommands. *cargo.Runner satisfies it.
type CargoRunner interface {
	Run(ctx context.Context, subcommand string, args ...string) (string, error)
}

// TagResolver maps a release to its commit. *vcs.TagResolver satisfies it.
type TagResolver interface {
	Resolve(ctx context.Context, repo, crate, version string) (string, error)
}

// track starts timing a lookup; call the result with the lookup's error:
//
//	defer track(ctx, "cargo", KindHash)(&err)
func track(ctx context.Context, provider, kind string) func(*error) {
	start := time.Now()
	return func(err *error) {
		observability.Lookup().OnLookup(ctx, provider, kind, time.Since(start), *err)
	}
}
