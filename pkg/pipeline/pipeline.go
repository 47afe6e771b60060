// Package pipeline runs one cratediff request end to end.
//
// The same code path serves the CLI and the HTTP service:
//
//  1. Metadata: resolve the local workspace graph when any request needs a
//     "from" version from it (or when no crate was named at all).
//  2. Diff: pick the request mode and build records with [diff.Builder].
//  3. Aggregate: group records per target, optionally with nested changes.
//  4. Render: write the report in one of the [render] formats.
//
// # Usage
//
//	runner := pipeline.NewRunner(cargo.NewMetadata(runner, logger), registries, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Requests:     reqs,
//	    ManifestPath: ".",
//	    Nested:       true,
//	})
//	if err != nil {
//	    return err
//	}
//	err = pipeline.Render(ctx, os.Stdout, res.Report, render.FormatSimple, render.Options{})
//
// [diff.Builder]: github.com/matzehuels/cratediff/pkg/diff.Builder
// [render]: github.com/matzehuels/cratediff/pkg/render
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/report"
)

// DefaultManifestPath is the workspace used when none is given.
const DefaultManifestPath = "."

// Mode is the request mode of a run.
type Mode int

const (
	// ModeWorkspace compares every direct workspace dependency with its
	// latest version. Selected when no crate is named.
	ModeWorkspace Mode = iota
	// ModeDependencies takes missing "from" versions from the workspace.
	ModeDependencies
	// ModeRequests uses only the versions named in the requests.
	ModeRequests
)

func (m Mode) String() string {
	switch m {
	case ModeWorkspace:
		return "workspace"
	case ModeDependencies:
		return "dependencies"
	default:
		return "requests"
	}
}

// SelectMode picks the mode for a request list.
func SelectMode(reqs []crate.Request) Mode {
	switch {
	case len(reqs) == 0:
		return ModeWorkspace
	case NeedsMetadata(reqs):
		return ModeDependencies
	default:
		return ModeRequests
	}
}

// NeedsMetadata reports whether the local workspace must be read: when no
// crate is named or any request lacks a "from" version.
func NeedsMetadata(reqs []crate.Request) bool {
	if len(reqs) == 0 {
		return true
	}
	for _, r := range reqs {
		if !r.HasFrom() {
			return true
		}
	}
	return false
}

// Options configures one run.
type Options struct {
	Requests     []crate.Request `json:"-"`
	ManifestPath string          `json:"manifest_path,omitempty"`

	// Nested also diffs the transitive dependencies of every direct change.
	Nested bool `json:"nested,omitempty"`

	// ComparisonLinks skips hash and repository lookups.
	ComparisonLinks bool `json:"links,omitempty"`

	// LookupTimeout bounds each metadata and registry call.
	LookupTimeout time.Duration `json:"-"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.ManifestPath == "" {
		o.ManifestPath = DefaultManifestPath
	}
}

// Result is the outcome of a run.
type Result struct {
	Mode   Mode
	Report *report.Report

	// Workspace is the local graph, nil in ModeRequests.
	Workspace *depgraph.Graph

	Stats Stats
}

// Stats contains timing information.
type Stats struct {
	MetadataTime  time.Duration
	DiffTime      time.Duration
	AggregateTime time.Duration
}
