// Package diff computes crate version diffs.
//
// A [Builder] turns diff requests into [Record] values using a registry
// provider for "to" versions and enrichment. Three request modes exist:
//
//   - [Builder.FromWorkspace]: no crate named; every direct dependency of
//     every workspace member is compared with its latest version.
//   - [Builder.FromDependencies]: crates named; "from" versions missing
//     from a request are taken from the workspace.
//   - [Builder.FromRequests]: every request carries its own "from" version;
//     the workspace is never consulted.
//
// All three emit through [Resolve], so a record whose versions are both
// known and equal is never produced.
//
// [Builder.Nested] compares the transitive dependencies of the two
// versions of a record and classifies them with [Classify].
package diff

import (
	"context"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/workspace"
)

// Options configures a Builder.
type Options struct {
	// ComparisonLinks skips hash and repository lookups; the presentation
	// layer links to a hosted comparison service instead.
	ComparisonLinks bool

	// LookupTimeout bounds every registry and metadata call. Zero means no
	// deadline beyond the caller's context.
	LookupTimeout time.Duration

	Logger *log.Logger
}

// Builder produces diff records. It holds no mutable state of its own.
type Builder struct {
	registry deps.RegistryProvider
	metadata deps.MetadataProvider
	opts     Options
	logger   *log.Logger
}

// NewBuilder creates a Builder. metadata is only needed by Nested.
func NewBuilder(registry deps.RegistryProvider, metadata deps.MetadataProvider, opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{registry: registry, metadata: metadata, opts: opts, logger: logger}
}

// FromWorkspace compares every direct dependency of every member of ws with
// its latest registry version. Members without changes still appear as
// (empty) targets.
func (b *Builder) FromWorkspace(ctx context.Context, ws *depgraph.Graph) *Targets {
	out := NewTargets()
	for _, m := range workspace.DirectDependencies(ws, b.logger) {
		out.Ensure(m.Name)
		for _, dep := range m.Dependencies {
			to, repo := b.resolveTo(ctx, dep.Name, nil)
			b.emit(ctx, out, m.Name, dep.Name, dep.Version, to, repo)
		}
	}
	return out
}

// FromDependencies handles requests of which at least one lacks a "from"
// version. Missing versions come from every member that depends on the
// crate; a crate no member depends on is diffed from "nothing" under
// DefaultTarget.
func (b *Builder) FromDependencies(ctx context.Context, reqs []crate.Request, ws *depgraph.Graph) *Targets {
	out := NewTargets()
	for _, req := range reqs {
		var froms []workspace.TargetVersion
		if req.HasFrom() {
			froms = []workspace.TargetVersion{{Target: DefaultTarget, Identity: crate.Identity{Name: req.Name, Version: req.From}}}
		} else {
			froms = workspace.DependencyInfo(ws, req.Name, b.logger)
		}
		if len(froms) == 0 {
			b.logger.Debug("crate is not a workspace dependency", "crate", req.Name)
			froms = []workspace.TargetVersion{{Target: DefaultTarget}}
		}

		to, repo := b.resolveTo(ctx, req.Name, req.To)
		for _, f := range froms {
			b.emit(ctx, out, f.Target, req.Name, f.Identity.Version, to, repo)
		}
	}
	return out
}

// FromRequests handles requests that need no workspace context. Every
// record lands under DefaultTarget.
func (b *Builder) FromRequests(ctx context.Context, reqs []crate.Request) *Targets {
	out := NewTargets()
	for _, req := range reqs {
		to, repo := b.resolveTo(ctx, req.Name, req.To)
		b.emit(ctx, out, DefaultTarget, req.Name, req.From, to, repo)
	}
	return out
}

// resolveTo returns the "to" version and repository for name. An explicit
// version always wins; the registry still supplies the repository.
func (b *Builder) resolveTo(ctx context.Context, name string, explicit *semver.Version) (*semver.Version, string) {
	if explicit != nil && b.opts.ComparisonLinks {
		return explicit, ""
	}

	ctx, cancel := b.lookupContext(ctx)
	defer cancel()
	info, err := b.registry.LatestOrPinned(ctx, name, explicit)
	if err != nil {
		b.logger.Warn("version lookup failed", "crate", name, "version", crate.FormatVersion(explicit), "err", err)
	}

	to := info.Version
	if explicit != nil {
		to = explicit
	}
	if b.opts.ComparisonLinks {
		return to, ""
	}
	return to, info.Repository
}

func (b *Builder) emit(ctx context.Context, out *Targets, target, name string, from, to *semver.Version, repo string) {
	rec, ok := Resolve(name, from, to)
	if !ok {
		b.logger.Debug("up to date", "crate", name, "target", target, "version", crate.FormatVersion(from))
		return
	}
	if !b.opts.ComparisonLinks {
		rec.Repository = repo
		rec.FromHash = b.commitHash(ctx, name, from)
		rec.ToHash = b.commitHash(ctx, name, to)
	}
	out.Add(target, rec)
}

func (b *Builder) commitHash(ctx context.Context, name string, v *semver.Version) string {
	if v == nil {
		return ""
	}
	ctx, cancel := b.lookupContext(ctx)
	defer cancel()
	hash, err := b.registry.CommitHash(ctx, name, v)
	if err != nil {
		b.logger.Debug("commit hash unavailable", "crate", name, "version", v.Original(), "err", err)
		return ""
	}
	return hash
}

func (b *Builder) repository(ctx context.Context, name string, v *semver.Version) string {
	ctx, cancel := b.lookupContext(ctx)
	defer cancel()
	repo, err := b.registry.Repository(ctx, name, v)
	if err != nil {
		b.logger.Debug("repository unavailable", "crate", name, "version", crate.FormatVersion(v), "err", err)
		return ""
	}
	return repo
}

func (b *Builder) lookupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.opts.LookupTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.opts.LookupTimeout)
}
