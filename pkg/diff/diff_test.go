package diff

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/deps"
)

const reg = "registry+https://github.com/rust-lang/crates.io-index#"

func v(s string) *semver.Version { return crate.MustVersion(s) }

func ident(name, version string) crate.Identity {
	id, err := crate.Parse(reg + name + "@" + version)
	if err != nil {
		panic(err)
	}
	return id
}

func quiet() *log.Logger { return log.New(io.Discard) }

// workspaceGraph builds a workspace whose members depend on the given
// registry ids.
func workspaceGraph(t *testing.T, members map[string][]string, order ...string) *depgraph.Graph {
	t.Helper()
	g := depgraph.New()
	add := func(id string) {
		if _, ok := g.Node(id); !ok {
			require.NoError(t, g.AddNode(depgraph.Node{ID: id}))
		}
	}
	for _, name := range order {
		member := "path+file:///ws/" + name + "#" + name + "@0.1.0"
		add(member)
		require.NoError(t, g.AddMember(member))
		for _, dep := range members[name] {
			add(reg + dep)
			require.NoError(t, g.AddEdge(member, reg+dep))
		}
	}
	return g
}

func TestResolveSuppression(t *testing.T) {
	_, ok := Resolve("serde", v("1.0.0"), v("1.0.0"))
	assert.False(t, ok, "equal versions must be suppressed")

	_, ok = Resolve("serde", v("1.0.0+a"), v("1.0.0+b"))
	assert.True(t, ok, "build metadata makes versions distinct")

	for _, tc := range []struct{ from, to *semver.Version }{
		{v("1.0.0"), v("1.0.1")},
		{nil, v("1.0.1")},
		{v("1.0.0"), nil},
		{nil, nil},
	} {
		rec, ok := Resolve("serde", tc.from, tc.to)
		require.True(t, ok)
		assert.Equal(t, "serde", rec.Name)
		assert.Same(t, tc.from, rec.From)
		assert.Same(t, tc.to, rec.To)
	}
}

func TestClassifyScenarioNested(t *testing.T) {
	from := []crate.Identity{ident("A", "1.0.0"), ident("B", "2.0.0")}
	to := []crate.Identity{ident("A", "1.1.0"), ident("C", "1.0.0")}

	c := Classify(from, to)

	require.Len(t, c.Removed, 1)
	assert.Equal(t, "B", c.Removed[0].Name)
	assert.Equal(t, "2.0.0", c.Removed[0].From.Original())
	assert.Nil(t, c.Removed[0].To)

	require.Len(t, c.Added, 1)
	assert.Equal(t, "C", c.Added[0].Name)
	assert.Nil(t, c.Added[0].From)
	assert.Equal(t, "1.0.0", c.Added[0].To.Original())

	require.Len(t, c.Updated, 1)
	assert.Equal(t, "A", c.Updated[0].Name)
	assert.Equal(t, "1.0.0", c.Updated[0].From.Original())
	assert.Equal(t, "1.1.0", c.Updated[0].To.Original())
}

func TestClassifyIdenticalSets(t *testing.T) {
	set := []crate.Identity{ident("A", "1.0.0")}
	assert.True(t, Classify(set, set).Empty())
	assert.True(t, Classify(nil, nil).Empty())
}

func TestClassifyPartition(t *testing.T) {
	from := []crate.Identity{ident("a", "1.0.0"), ident("b", "1.0.0"), ident("c", "1.0.0"), ident("d", "0.1.0")}
	to := []crate.Identity{ident("a", "1.0.0"), ident("b", "2.0.0"), ident("e", "1.0.0"), ident("d", "0.0.9")}

	c := Classify(from, to)

	seen := map[string]string{}
	for kind, rs := range map[string][]Record{"removed": c.Removed, "added": c.Added, "updated": c.Updated} {
		for _, r := range rs {
			prev, dup := seen[r.Name]
			assert.False(t, dup, "%s in both %s and %s", r.Name, prev, kind)
			seen[r.Name] = kind
		}
	}
	assert.Equal(t, map[string]string{"b": "updated", "c": "removed", "e": "added", "d": "updated"}, seen)
}

func TestClassifyMultipleVersions(t *testing.T) {
	tests := []struct {
		name     string
		from, to []crate.Identity
		kind     string
		want     [2]string
	}{
		{
			name: "highest leftovers are paired",
			from: []crate.Identity{ident("syn", "1.0.109"), ident("syn", "2.0.50")},
			to:   []crate.Identity{ident("syn", "2.0.60")},
			kind: "updated",
			want: [2]string{"2.0.50", "2.0.60"},
		},
		{
			name: "kept version is unchanged",
			from: []crate.Identity{ident("syn", "1.0.109"), ident("syn", "2.0.90")},
			to:   []crate.Identity{ident("syn", "2.0.90"), ident("syn", "2.0.100")},
			kind: "updated",
			want: [2]string{"1.0.109", "2.0.100"},
		},
		{
			name: "old major dropped",
			from: []crate.Identity{ident("syn", "1.0.109"), ident("syn", "2.0.90")},
			to:   []crate.Identity{ident("syn", "2.0.90")},
			kind: "removed",
			want: [2]string{"1.0.109", ""},
		},
		{
			name: "new major added",
			from: []crate.Identity{ident("syn", "2.0.90")},
			to:   []crate.Identity{ident("syn", "1.0.109"), ident("syn", "2.0.90")},
			kind: "added",
			want: [2]string{"", "1.0.109"},
		},
		{
			name: "duplicates on one side",
			from: []crate.Identity{ident("syn", "2.0.90"), ident("syn", "2.0.90")},
			to:   []crate.Identity{ident("syn", "2.0.90")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := map[string][]Record{}
			for kind, rs := range classified(Classify(tt.from, tt.to)) {
				if len(rs) > 0 {
					got[kind] = rs
				}
			}
			if tt.kind == "" {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			require.Len(t, got[tt.kind], 1)
			r := got[tt.kind][0]
			assert.Equal(t, "syn", r.Name)
			assert.Equal(t, tt.want, [2]string{crate.FormatVersion(r.From), crate.FormatVersion(r.To)})
		})
	}
}

func TestClassifyPartitionMultipleVersions(t *testing.T) {
	from := []crate.Identity{
		ident("syn", "1.0.109"), ident("syn", "2.0.50"),
		ident("bitflags", "1.3.2"), ident("bitflags", "2.4.0"),
		ident("rand", "0.8.5"), ident("windows-sys", "0.48.0"),
	}
	to := []crate.Identity{
		ident("syn", "2.0.60"),
		ident("bitflags", "2.4.0"),
		ident("rand", "0.8.5"), ident("rand", "0.9.0"),
		ident("windows-sys", "0.52.0"), ident("windows-sys", "0.59.0"),
		ident("hashbrown", "0.14.0"), ident("hashbrown", "0.15.0"),
	}

	seen := map[string]string{}
	for kind, rs := range classified(Classify(from, to)) {
		for _, r := range rs {
			prev, dup := seen[r.Name]
			assert.False(t, dup, "%s in both %s and %s", r.Name, prev, kind)
			seen[r.Name] = kind
		}
	}
	assert.Equal(t, map[string]string{
		"syn":         "updated",
		"bitflags":    "removed",
		"rand":        "added",
		"windows-sys": "updated",
		"hashbrown":   "added",
	}, seen)
}

func classified(c Changes) map[string][]Record {
	return map[string][]Record{"removed": c.Removed, "added": c.Added, "updated": c.Updated}
}

func TestFromRequestsExplicitRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := deps.NewMockRegistryProvider(ctrl)
	metadata := deps.NewMockMetadataProvider(ctrl) // no calls expected

	registry.EXPECT().LatestOrPinned(gomock.Any(), "serde", gomock.Any()).
		Return(deps.CrateInfo{Version: v("1.0.226"), Repository: "https://github.com/serde-rs/serde"}, nil)
	registry.EXPECT().CommitHash(gomock.Any(), "serde", gomock.Any()).Return("abc", nil).Times(2)

	req, err := crate.ParseRequest("serde@1.0.223-1.0.226")
	require.NoError(t, err)

	b := NewBuilder(registry, metadata, Options{Logger: quiet()})
	out := b.FromRequests(context.Background(), []crate.Request{req})

	assert.Equal(t, []string{DefaultTarget}, out.Names())
	recs := out.Records(DefaultTarget)
	require.Len(t, recs, 1)
	assert.Equal(t, "serde", recs[0].Name)
	assert.Equal(t, "1.0.223", recs[0].From.Original())
	assert.Equal(t, "1.0.226", recs[0].To.Original())
	assert.Equal(t, "https://github.com/serde-rs/serde", recs[0].Repository)
}

func TestFromRequestsSuppressesEqual(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := deps.NewMockRegistryProvider(ctrl)
	registry.EXPECT().LatestOrPinned(gomock.Any(), "serde", gomock.Any()).Return(deps.CrateInfo{Version: v("1.0.226")}, nil)

	req, err := crate.ParseRequest("serde@1.0.226-")
	require.NoError(t, err)

	out := NewBuilder(registry, nil, Options{Logger: quiet()}).FromRequests(context.Background(), []crate.Request{req})
	assert.Zero(t, out.Len())
}

func TestFromDependenciesPerTarget(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := deps.NewMockRegistryProvider(ctrl)
	registry.EXPECT().LatestOrPinned(gomock.Any(), "serde", gomock.Nil()).
		Return(deps.CrateInfo{Version: v("1.0.226")}, nil).Times(1)

	ws := workspaceGraph(t, map[string][]string{
		"lib": {"serde@1.0.222"},
		"bin": {"serde@1.0.224"},
	}, "lib", "bin")

	b := NewBuilder(registry, nil, Options{ComparisonLinks: true, Logger: quiet()})
	out := b.FromDependencies(context.Background(), []crate.Request{{Name: "serde"}}, ws)

	assert.Equal(t, []string{"lib", "bin"}, out.Names())
	lib := out.Records("lib")
	require.Len(t, lib, 1)
	assert.Equal(t, "1.0.222", lib[0].From.Original())
	assert.Equal(t, "1.0.226", lib[0].To.Original())
	bin := out.Records("bin")
	require.Len(t, bin, 1)
	assert.Equal(t, "1.0.224", bin[0].From.Original())
	assert.Equal(t, "1.0.226", bin[0].To.Original())

	// comparison-link mode never enriches
	assert.Empty(t, lib[0].Repository)
	assert.Empty(t, lib[0].FromHash)
}

func TestFromDependenciesNotADependency(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := deps.NewMockRegistryProvider(ctrl)
	registry.EXPECT().LatestOrPinned(gomock.Any(), "rand", gomock.Nil()).
		Return(deps.CrateInfo{Version: v("0.9.2"), Repository: "https://github.com/rust-random/rand"}, nil)
	registry.EXPECT().CommitHash(gomock.Any(), "rand", gomock.Any()).Return("", errors.New("no vcs info"))

	ws := workspaceGraph(t, map[string][]string{"lib": {"serde@1.0.222"}}, "lib")

	out := NewBuilder(registry, nil, Options{Logger: quiet()}).
		FromDependencies(context.Background(), []crate.Request{{Name: "rand"}}, ws)

	assert.Equal(t, []string{DefaultTarget}, out.Names())
	recs := out.Records(DefaultTarget)
	require.Len(t, recs, 1)
	assert.Nil(t, recs[0].From)
	assert.Equal(t, "0.9.2", recs[0].To.Original())
	assert.Empty(t, recs[0].ToHash, "failed lookups degrade to empty")
	assert.Equal(t, "https://github.com/rust-random/rand", recs[0].Repository)
}

func TestFromDependenciesMixedBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := deps.NewMockRegistryProvider(ctrl)
	registry.EXPECT().LatestOrPinned(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(deps.CrateInfo{Version: v("2.0.0")}, nil).AnyTimes()

	ws := workspaceGraph(t, map[string][]string{"lib": {"serde@1.0.222"}}, "lib")
	reqs := []crate.Request{{Name: "serde"}, {Name: "tokio", From: v("1.40.0")}}

	out := NewBuilder(registry, nil, Options{ComparisonLinks: true, Logger: quiet()}).
		FromDependencies(context.Background(), reqs, ws)

	assert.Equal(t, []string{"lib", DefaultTarget}, out.Names())
	tokio := out.Records(DefaultTarget)
	require.Len(t, tokio, 1)
	assert.Equal(t, "1.40.0", tokio[0].From.Original())
}

func TestFromWorkspace(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := deps.NewMockRegistryProvider(ctrl)
	registry.EXPECT().LatestOrPinned(gomock.Any(), "serde", gomock.Nil()).
		Return(deps.CrateInfo{Version: v("1.0.228"), Repository: "https://github.com/serde-rs/serde"}, nil)
	registry.EXPECT().LatestOrPinned(gomock.Any(), "itoa", gomock.Nil()).
		Return(deps.CrateInfo{Version: v("1.0.15")}, nil)
	registry.EXPECT().LatestOrPinned(gomock.Any(), "gone", gomock.Nil()).
		Return(deps.CrateInfo{}, errors.New("cargo info: exit status 101"))
	registry.EXPECT().CommitHash(gomock.Any(), "serde", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, ver *semver.Version) (string, error) {
			return "hash-" + ver.Original(), nil
		}).Times(2)
	registry.EXPECT().CommitHash(gomock.Any(), "gone", gomock.Any()).Return("hash-gone", nil)

	ws := workspaceGraph(t, map[string][]string{
		"app":  {"serde@1.0.200", "itoa@1.0.15"},
		"tool": {"gone@0.1.0"},
		"idle": nil,
	}, "app", "tool", "idle")

	out := NewBuilder(registry, nil, Options{Logger: quiet()}).FromWorkspace(context.Background(), ws)

	assert.Equal(t, []string{"app", "tool", "idle"}, out.Names())

	app := out.Records("app")
	require.Len(t, app, 1, "itoa is up to date")
	assert.Equal(t, Record{
		Name:       "serde",
		From:       v("1.0.200"),
		FromHash:   "hash-1.0.200",
		To:         v("1.0.228"),
		ToHash:     "hash-1.0.228",
		Repository: "https://github.com/serde-rs/serde",
	}.Key(), app[0].Key())

	tool := out.Records("tool")
	require.Len(t, tool, 1, "unknown latest still yields a record")
	assert.Equal(t, KindRemoved, tool[0].Kind())
	assert.Equal(t, "hash-gone", tool[0].FromHash)

	assert.Empty(t, out.Records("idle"))
}

func TestNested(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := deps.NewMockRegistryProvider(ctrl)
	metadata := deps.NewMockMetadataProvider(ctrl)

	crateGraph := func(direct string, nested ...string) *depgraph.Graph {
		g := depgraph.New()
		root := "path+file:///src/x#x@1.0.0"
		require.NoError(t, g.AddNode(depgraph.Node{ID: root}))
		require.NoError(t, g.AddMember(root))
		require.NoError(t, g.AddNode(depgraph.Node{ID: reg + direct}))
		require.NoError(t, g.AddEdge(root, reg+direct))
		for _, n := range nested {
			require.NoError(t, g.AddNode(depgraph.Node{ID: reg + n}))
		}
		return g
	}

	registry.EXPECT().SourcePath(gomock.Any(), "x", gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, ver *semver.Version) (string, error) {
			return "/src/" + name + "-" + ver.Original(), nil
		}).Times(2)
	metadata.EXPECT().Resolve(gomock.Any(), "/src/x-1.0.0").Return(crateGraph("d@1.0.0", "A@1.0.0", "B@2.0.0"), nil)
	metadata.EXPECT().Resolve(gomock.Any(), "/src/x-2.0.0").Return(crateGraph("d@1.0.0", "A@1.1.0", "C@1.0.0"), nil)

	b := NewBuilder(registry, metadata, Options{ComparisonLinks: true, Logger: quiet()})
	c := b.Nested(context.Background(), Record{Name: "x", From: v("1.0.0"), To: v("2.0.0")})

	require.Len(t, c.Removed, 1)
	assert.Equal(t, "B", c.Removed[0].Name)
	require.Len(t, c.Added, 1)
	assert.Equal(t, "C", c.Added[0].Name)
	require.Len(t, c.Updated, 1)
	assert.Equal(t, "A", c.Updated[0].Name)
}

func TestNestedEnrichesAndDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := deps.NewMockRegistryProvider(ctrl)
	metadata := deps.NewMockMetadataProvider(ctrl)

	g := depgraph.New()
	root := "path+file:///src/x#x@1.0.0"
	require.NoError(t, g.AddNode(depgraph.Node{ID: root}))
	require.NoError(t, g.AddMember(root))
	require.NoError(t, g.AddNode(depgraph.Node{ID: reg + "A@1.0.0"}))

	// "from" sources are missing; only the "to" set is known
	registry.EXPECT().SourcePath(gomock.Any(), "x", gomock.Any()).Return("", errors.New("not downloaded"))
	registry.EXPECT().SourcePath(gomock.Any(), "x", gomock.Any()).Return("/src/x-2.0.0", nil)
	metadata.EXPECT().Resolve(gomock.Any(), "/src/x-2.0.0").Return(g, nil)
	registry.EXPECT().CommitHash(gomock.Any(), "A", gomock.Any()).Return("deadbeef", nil)
	registry.EXPECT().Repository(gomock.Any(), "A", gomock.Any()).Return("https://github.com/a/a", nil)

	b := NewBuilder(registry, metadata, Options{Logger: quiet()})
	c := b.Nested(context.Background(), Record{Name: "x", From: v("1.0.0"), To: v("2.0.0")})

	assert.Empty(t, c.Removed)
	assert.Empty(t, c.Updated)
	require.Len(t, c.Added, 1)
	assert.Equal(t, "deadbeef", c.Added[0].ToHash)
	assert.Equal(t, "https://github.com/a/a", c.Added[0].Repository)
}

func TestNestedAbsentVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	b := NewBuilder(deps.NewMockRegistryProvider(ctrl), deps.NewMockMetadataProvider(ctrl), Options{Logger: quiet()})

	c := b.Nested(context.Background(), Record{Name: "x"})
	assert.True(t, c.Empty())
}
