// Package report aggregates diff records into a per-target report.
//
// A [Report] lists build targets in the order the builder produced them.
// Each target holds one [DependencyDiff] per direct record, with nested
// changes sorted by (name, from, to). [Report.Flatten] produces the merged
// view used by ungrouped output.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cratediff/pkg/diff"
)

// DependencyDiff is one direct change plus its nested changes.
type DependencyDiff struct {
	Diff    diff.Record
	Removed []diff.Record
	Added   []diff.Record
	Updated []diff.Record
}

// HasNested reports whether any nested change was recorded.
func (d DependencyDiff) HasNested() bool {
	return len(d.Removed) > 0 || len(d.Added) > 0 || len(d.Updated) > 0
}

// Target groups the diffs of one build target. The empty name is the
// default target.
type Target struct {
	Name  string
	Diffs []DependencyDiff
}

// Report is the result of one diff run.
type Report struct {
	RunID     string
	CreatedAt time.Time
	Targets   []Target
}

// NestedFunc computes nested changes for a direct record.
type NestedFunc func(ctx context.Context, rec diff.Record) diff.Changes

// Aggregate builds a report from builder output. When nested is nil the
// nested lists stay empty. Targets without records are kept.
func Aggregate(ctx context.Context, targets *diff.Targets, nested NestedFunc) *Report {
	r := &Report{
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	for _, name := range targets.Names() {
		t := Target{Name: name}
		for _, rec := range targets.Records(name) {
			dd := DependencyDiff{Diff: rec}
			if nested != nil {
				c := nested(ctx, rec)
				dd.Removed, dd.Added, dd.Updated = c.Removed, c.Added, c.Updated
			}
			diff.Sort(dd.Removed)
			diff.Sort(dd.Added)
			diff.Sort(dd.Updated)
			t.Diffs = append(t.Diffs, dd)
		}
		r.Targets = append(r.Targets, t)
	}
	return r
}

// Empty reports whether the report contains no direct diff at all.
func (r *Report) Empty() bool {
	for _, t := range r.Targets {
		if len(t.Diffs) > 0 {
			return false
		}
	}
	return true
}

// Target returns the target with the given name.
func (r *Report) Target(name string) (Target, bool) {
	for _, t := range r.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}

// Flatten returns every direct and nested record across all targets,
// dropping records structurally equal to an earlier one. Order follows
// targets, then each direct record followed by its updated, added and
// removed nested records.
func (r *Report) Flatten() []diff.Record {
	seen := make(map[diff.Key]bool)
	var out []diff.Record
	add := func(recs ...diff.Record) {
		for _, rec := range recs {
			k := rec.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, rec)
		}
	}
	for _, t := range r.Targets {
		for _, d := range t.Diffs {
			add(d.Diff)
			add(d.Updated...)
			add(d.Added...)
			add(d.Removed...)
		}
	}
	return out
}

// Stats summarizes a report.
type Stats struct {
	Targets int `json:"targets" yaml:"targets"`
	Direct  int `json:"direct" yaml:"direct"`
	Removed int `json:"removed" yaml:"removed"`
	Added   int `json:"added" yaml:"added"`
	Updated int `json:"updated" yaml:"updated"`
}

// Stats counts the records in r.
func (r *Report) Stats() Stats {
	s := Stats{Targets: len(r.Targets)}
	for _, t := range r.Targets {
		s.Direct += len(t.Diffs)
		for _, d := range t.Diffs {
			s.Removed += len(d.Removed)
			s.Added += len(d.Added)
			s.Updated += len(d.Updated)
		}
	}
	return s
}
