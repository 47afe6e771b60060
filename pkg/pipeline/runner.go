package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/diff"
	"github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/observability"
	"github.com/matzehuels/cratediff/pkg/report"
)

// RegistryFactory builds the registry provider for one run. ws is the
// local workspace graph, or nil when the run does not read it; factories
// use it to locate the registry source directory.
type RegistryFactory func(ctx context.Context, ws *depgraph.Graph) (deps.RegistryProvider, error)

// StaticRegistry returns a factory that always yields p.
func StaticRegistry(p deps.RegistryProvider) RegistryFactory {
	return func(context.Context, *depgraph.Graph) (deps.RegistryProvider, error) { return p, nil }
}

// Runner executes diff runs. It keeps no state between runs, so one
// Runner may serve concurrent requests.
type Runner struct {
	Metadata deps.MetadataProvider
	Registry RegistryFactory
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(metadata deps.MetadataProvider, registry RegistryFactory, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Metadata: metadata, Registry: registry, Logger: logger}
}

// Execute runs metadata, diff and aggregation. A run either returns a
// (possibly partial) report or a single fatal error: metadata failures in
// modes that need the workspace, or a registry that cannot be set up.
// Individual lookup failures only leave fields empty.
func (r *Runner) Execute(ctx context.Context, opts Options) (res *Result, err error) {
	opts.SetDefaults()
	logger := r.logger(opts)
	mode := SelectMode(opts.Requests)

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnDiffStart(ctx, mode.String(), len(opts.Requests))
	defer func() {
		records := 0
		if res != nil {
			records = res.Report.Stats().Direct
		}
		hooks.OnDiffComplete(ctx, mode.String(), records, time.Since(start), err)
	}()

	res = &Result{Mode: mode}

	if NeedsMetadata(opts.Requests) {
		t := time.Now()
		ws, err := r.Workspace(ctx, opts.ManifestPath, opts.LookupTimeout)
		if err != nil {
			return nil, err
		}
		res.Workspace = ws
		res.Stats.MetadataTime = time.Since(t)
		logger.Debug("read workspace", "manifest", opts.ManifestPath,
			"packages", ws.NodeCount(), "members", len(ws.Members()), "duration", res.Stats.MetadataTime)
	}

	if r.Registry == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no registry provider configured")
	}
	registry, err := r.Registry(ctx, res.Workspace)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "registry setup")
	}

	b := diff.NewBuilder(registry, r.Metadata, diff.Options{
		ComparisonLinks: opts.ComparisonLinks,
		LookupTimeout:   opts.LookupTimeout,
		Logger:          logger,
	})

	t := time.Now()
	var targets *diff.Targets
	switch mode {
	case ModeWorkspace:
		targets = b.FromWorkspace(ctx, res.Workspace)
	case ModeDependencies:
		targets = b.FromDependencies(ctx, opts.Requests, res.Workspace)
	default:
		targets = b.FromRequests(ctx, opts.Requests)
	}
	res.Stats.DiffTime = time.Since(t)
	logger.Debug("built diffs", "mode", mode, "targets", len(targets.Names()),
		"records", targets.Len(), "duration", res.Stats.DiffTime)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var nested report.NestedFunc
	if opts.Nested {
		nested = b.Nested
	}
	t = time.Now()
	res.Report = report.Aggregate(ctx, targets, nested)
	res.Stats.AggregateTime = time.Since(t)
	return res, nil
}

// Workspace resolves the dependency graph of the workspace at manifest.
// Every failure is a METADATA_UNAVAILABLE error.
func (r *Runner) Workspace(ctx context.Context, manifest string, timeout time.Duration) (g *depgraph.Graph, err error) {
	if r.Metadata == nil {
		return nil, errors.New(errors.ErrCodeMetadata, "no metadata provider configured")
	}
	provider := r.Metadata.Name()

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnMetadataStart(ctx, provider, manifest)
	defer func() {
		nodes := 0
		if g != nil {
			nodes = g.NodeCount()
		}
		hooks.OnMetadataComplete(ctx, provider, manifest, nodes, time.Since(start), err)
	}()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	g, err = r.Metadata.Resolve(ctx, manifest)
	if err != nil {
		if errors.Is(err, errors.ErrCodeMetadata) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeMetadata, err, "%s metadata for %s", provider, manifest)
	}
	return g, nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
