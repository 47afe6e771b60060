package report

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/diff"
)

func rec(name, from, to string) diff.Record {
	r := diff.Record{Name: name}
	if from != "" {
		r.From = crate.MustVersion(from)
	}
	if to != "" {
		r.To = crate.MustVersion(to)
	}
	return r
}

func names(rs []diff.Record) []string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Name+":"+crate.FormatVersion(r.From)+"->"+crate.FormatVersion(r.To))
	}
	return out
}

func TestAggregateSortsNested(t *testing.T) {
	targets := diff.NewTargets()
	targets.Add("app", rec("tokio", "1.40.0", "1.47.1"))
	targets.Ensure("idle")

	nested := func(_ context.Context, r diff.Record) diff.Changes {
		return diff.Changes{
			Updated: []diff.Record{rec("mio", "1.0.2", "1.0.4"), rec("bytes", "1.7.0", "1.10.1"), rec("mio", "0.8.11", "1.0.4")},
			Added:   []diff.Record{rec("slab", "", "0.4.11"), rec("io-uring", "", "0.7.10")},
			Removed: []diff.Record{rec("windows-sys", "0.52.0", "")},
		}
	}

	r := Aggregate(context.Background(), targets, nested)

	_, err := uuid.Parse(r.RunID)
	require.NoError(t, err)
	require.Len(t, r.Targets, 2)
	assert.Equal(t, "app", r.Targets[0].Name)
	assert.Equal(t, "idle", r.Targets[1].Name)
	assert.Empty(t, r.Targets[1].Diffs)

	dd := r.Targets[0].Diffs[0]
	assert.Equal(t, []string{"bytes:1.7.0->1.10.1", "mio:0.8.11->1.0.4", "mio:1.0.2->1.0.4"}, names(dd.Updated))
	assert.Equal(t, []string{"io-uring:->0.7.10", "slab:->0.4.11"}, names(dd.Added))
	assert.True(t, dd.HasNested())
}

func TestAggregateWithoutNested(t *testing.T) {
	targets := diff.NewTargets()
	targets.Add(diff.DefaultTarget, rec("serde", "1.0.223", "1.0.226"))

	r := Aggregate(context.Background(), targets, nil)
	require.Len(t, r.Targets, 1)
	dd := r.Targets[0].Diffs[0]
	assert.False(t, dd.HasNested())
	assert.NotNil(t, dd.Diff.From)
	assert.False(t, r.Empty())
}

func TestEmpty(t *testing.T) {
	targets := diff.NewTargets()
	targets.Ensure("app")
	assert.True(t, Aggregate(context.Background(), targets, nil).Empty())
	assert.True(t, Aggregate(context.Background(), diff.NewTargets(), nil).Empty())
}

func TestFlattenDedup(t *testing.T) {
	shared := rec("syn", "2.0.90", "2.0.100")
	r := &Report{Targets: []Target{
		{Name: "lib", Diffs: []DependencyDiff{{
			Diff:    rec("serde", "1.0.222", "1.0.226"),
			Updated: []diff.Record{shared},
		}}},
		{Name: "bin", Diffs: []DependencyDiff{{
			Diff:    rec("serde", "1.0.224", "1.0.226"),
			Updated: []diff.Record{shared},
			Added:   []diff.Record{rec("quote", "", "1.0.40")},
		}}},
	}}

	flat := r.Flatten()
	assert.Equal(t, []string{
		"serde:1.0.222->1.0.226",
		"syn:2.0.90->2.0.100",
		"serde:1.0.224->1.0.226",
		"quote:->1.0.40",
	}, names(flat))

	// full structural equality: a different hash is a different record
	withHash := shared
	withHash.ToHash = "abc1234"
	r.Targets[1].Diffs[0].Updated = []diff.Record{withHash}
	assert.Len(t, r.Flatten(), 5)
}

func TestStats(t *testing.T) {
	r := &Report{Targets: []Target{{Name: "a", Diffs: []DependencyDiff{{
		Diff:    rec("x", "1.0.0", "2.0.0"),
		Removed: []diff.Record{rec("y", "1.0.0", "")},
		Added:   []diff.Record{rec("z", "", "1.0.0"), rec("w", "", "1.0.0")},
	}}}}}

	assert.Equal(t, Stats{Targets: 1, Direct: 1, Removed: 1, Added: 2}, r.Stats())
	tg, ok := r.Target("a")
	require.True(t, ok)
	assert.Len(t, tg.Diffs, 1)
}
