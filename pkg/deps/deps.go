//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -destination=mock_deps.gen.go -package=deps -source=deps.go

package deps

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratediff/pkg/depgraph"
)

const (
	DefaultLookupTimeout = 2 * time.Minute // Default deadline per collaborator call
	DefaultCacheTTL      = time.Hour       // Default HTTP cache duration
)

// MetadataProvider produces the resolved dependency graph of a Cargo
// project.
type MetadataProvider interface {
	// Name returns the provider identifier (e.g. "cargo").
	Name() string
	// Resolve returns the graph for the project at manifestPath, which may
	// be a directory or a Cargo.toml. Failures are METADATA_UNAVAILABLE.
	Resolve(ctx context.Context, manifestPath string) (*depgraph.Graph, error)
}

// RegistryProvider answers questions about published crate versions.
// Every method is best effort: callers treat an error as "unknown".
type RegistryProvider interface {
	// LatestOrPinned resolves version (or the latest version when nil)
	// together with the crate's repository URL.
	LatestOrPinned(ctx context.Context, name string, version *semver.Version) (CrateInfo, error)
	// CommitHash returns the VCS commit a published version was built from.
	CommitHash(ctx context.Context, name string, version *semver.Version) (string, error)
	// Repository returns the repository URL of version (or latest).
	Repository(ctx context.Context, name string, version *semver.Version) (string, error)
	// SourcePath returns the local directory holding the unpacked sources
	// of version, downloading them if needed.
	SourcePath(ctx context.Context, name string, version *semver.Version) (string, error)
}

// CrateInfo is the result of a version lookup.
type CrateInfo struct {
	Version    *semver.Version // Resolved version, nil when unknown
	Repository string          // Source repository URL, "" when unknown
}
