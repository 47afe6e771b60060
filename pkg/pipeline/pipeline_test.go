package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/diff"
	cderrors "github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/observability"
	"github.com/matzehuels/cratediff/pkg/render"
)

const reg = "registry+https://github.com/rust-lang/crates.io-index#"

var v = crate.MustVersion

func quiet() *log.Logger { return log.New(io.Discard) }

// graph builds a dependency graph from member ids and an edge list.
func graph(t *testing.T, members []string, edges [][2]string) *depgraph.Graph {
	t.Helper()
	g := depgraph.New()
	seen := map[string]bool{}
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			require.NoError(t, g.AddNode(depgraph.Node{ID: id}))
		}
	}
	for _, m := range members {
		add(m)
	}
	for _, e := range edges {
		add(e[0])
		add(e[1])
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	for _, m := range members {
		require.NoError(t, g.AddMember(m))
	}
	return g
}

func requests(t *testing.T, args ...string) []crate.Request {
	t.Helper()
	reqs, err := crate.ParseRequests(args)
	require.NoError(t, err)
	return reqs
}

func TestSelectMode(t *testing.T) {
	tests := []struct {
		args     []string
		mode     Mode
		metadata bool
	}{
		{nil, ModeWorkspace, true},
		{[]string{"serde"}, ModeDependencies, true},
		{[]string{"serde@1.0.0-1.0.1", "tokio@-1.40.0"}, ModeDependencies, true},
		{[]string{"serde@1.0.0-1.0.1", "tokio@1.39.0-"}, ModeRequests, false},
	}
	for _, tt := range tests {
		reqs := requests(t, tt.args...)
		assert.Equal(t, tt.mode, SelectMode(reqs), "%v", tt.args)
		assert.Equal(t, tt.metadata, NeedsMetadata(reqs), "%v", tt.args)
	}
	assert.Equal(t, "workspace", ModeWorkspace.String())
	assert.Equal(t, "requests", ModeRequests.String())
}

func TestExecuteRequestsNeverReadsWorkspace(t *testing.T) {
	ctrl := gomock.NewController(t)
	metadata := deps.NewMockMetadataProvider(ctrl) // no calls expected
	registry := deps.NewMockRegistryProvider(ctrl) // explicit versions in link mode need no lookup

	var gotWS *depgraph.Graph
	called := false
	factory := func(_ context.Context, ws *depgraph.Graph) (deps.RegistryProvider, error) {
		called, gotWS = true, ws
		return registry, nil
	}

	r := NewRunner(metadata, factory, quiet())
	res, err := r.Execute(context.Background(), Options{
		Requests:        requests(t, "serde@1.0.0-1.0.1", "tokio@1.40.0-1.40.0"),
		ComparisonLinks: true,
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Nil(t, gotWS)
	assert.Equal(t, ModeRequests, res.Mode)
	assert.Nil(t, res.Workspace)

	require.Len(t, res.Report.Targets, 1)
	tgt := res.Report.Targets[0]
	assert.Equal(t, diff.DefaultTarget, tgt.Name)
	require.Len(t, tgt.Diffs, 1, "equal versions are never emitted")
	assert.Equal(t, "serde", tgt.Diffs[0].Diff.Name)
	assert.NotEmpty(t, res.Report.RunID)
}

func TestExecuteMetadataFailureIsFatal(t *testing.T) {
	for _, args := range [][]string{nil, {"serde"}} {
		ctrl := gomock.NewController(t)
		metadata := deps.NewMockMetadataProvider(ctrl)
		metadata.EXPECT().Name().Return("cargo").AnyTimes()
		metadata.EXPECT().Resolve(gomock.Any(), "/ws").Return(nil, errors.New("could not find Cargo.toml"))

		factory := func(context.Context, *depgraph.Graph) (deps.RegistryProvider, error) {
			t.Fatal("registry must not be built after a metadata failure")
			return nil, nil
		}

		_, err := NewRunner(metadata, factory, quiet()).Execute(context.Background(), Options{
			Requests:     requests(t, args...),
			ManifestPath: "/ws",
		})
		require.Error(t, err)
		assert.True(t, cderrors.Is(err, cderrors.ErrCodeMetadata), "%v: %v", args, err)
	}
}

func TestExecuteWorkspace(t *testing.T) {
	app := "path+file:///ws/app#0.1.0"
	ws := graph(t, []string{app}, [][2]string{
		{app, reg + "serde@1.0.0"},
		{app, reg + "itoa@1.0.15"},
	})

	ctrl := gomock.NewController(t)
	metadata := deps.NewMockMetadataProvider(ctrl)
	metadata.EXPECT().Name().Return("cargo").AnyTimes()
	metadata.EXPECT().Resolve(gomock.Any(), DefaultManifestPath).Return(ws, nil)

	registry := deps.NewMockRegistryProvider(ctrl)
	registry.EXPECT().LatestOrPinned(gomock.Any(), "serde", gomock.Nil()).Return(deps.CrateInfo{Version: v("1.0.1")}, nil)
	registry.EXPECT().LatestOrPinned(gomock.Any(), "itoa", gomock.Nil()).Return(deps.CrateInfo{Version: v("1.0.15")}, nil)

	res, err := NewRunner(metadata, StaticRegistry(registry), quiet()).Execute(context.Background(), Options{
		ComparisonLinks: true,
	})
	require.NoError(t, err)
	assert.Equal(t, ModeWorkspace, res.Mode)
	assert.Same(t, ws, res.Workspace)

	tgt, ok := res.Report.Target("app")
	require.True(t, ok)
	require.Len(t, tgt.Diffs, 1)
	rec := tgt.Diffs[0].Diff
	assert.Equal(t, "serde", rec.Name)
	assert.Equal(t, "1.0.0", rec.From.String())
	assert.Equal(t, "1.0.1", rec.To.String())
	assert.False(t, tgt.Diffs[0].HasNested())
}

func TestExecuteNested(t *testing.T) {
	from := graph(t, []string{reg + "serde@1.0.0"}, [][2]string{
		{reg + "serde@1.0.0", reg + "a@1.0.0"},
		{reg + "a@1.0.0", reg + "ryu@1.0.0"},
	})
	to := graph(t, []string{reg + "serde@1.0.1"}, [][2]string{
		{reg + "serde@1.0.1", reg + "a@1.0.0"},
		{reg + "a@1.0.0", reg + "ryu@1.0.1"},
		{reg + "a@1.0.0", reg + "itoa@1.0.0"},
	})

	ctrl := gomock.NewController(t)
	metadata := deps.NewMockMetadataProvider(ctrl)
	metadata.EXPECT().Resolve(gomock.Any(), "/src/serde-1.0.0").Return(from, nil)
	metadata.EXPECT().Resolve(gomock.Any(), "/src/serde-1.0.1").Return(to, nil)

	registry := deps.NewMockRegistryProvider(ctrl)
	registry.EXPECT().SourcePath(gomock.Any(), "serde", v("1.0.0")).Return("/src/serde-1.0.0", nil)
	registry.EXPECT().SourcePath(gomock.Any(), "serde", v("1.0.1")).Return("/src/serde-1.0.1", nil)

	res, err := NewRunner(metadata, StaticRegistry(registry), quiet()).Execute(context.Background(), Options{
		Requests:        requests(t, "serde@1.0.0-1.0.1"),
		Nested:          true,
		ComparisonLinks: true,
		LookupTimeout:   time.Minute,
	})
	require.NoError(t, err)

	d := res.Report.Targets[0].Diffs[0]
	require.Len(t, d.Updated, 1)
	assert.Equal(t, "ryu", d.Updated[0].Name)
	require.Len(t, d.Added, 1)
	assert.Equal(t, "itoa", d.Added[0].Name)
	assert.Empty(t, d.Removed)
}

func TestExecuteRegistryFailure(t *testing.T) {
	factory := func(context.Context, *depgraph.Graph) (deps.RegistryProvider, error) {
		return nil, errors.New("no cargo home")
	}
	_, err := NewRunner(nil, factory, quiet()).Execute(context.Background(), Options{
		Requests: requests(t, "serde@1.0.0-1.0.1"),
	})
	assert.True(t, cderrors.Is(err, cderrors.ErrCodeInvalidConfig))

	_, err = NewRunner(nil, nil, quiet()).Execute(context.Background(), Options{
		Requests: requests(t, "serde@1.0.0-1.0.1"),
	})
	assert.True(t, cderrors.Is(err, cderrors.ErrCodeInvalidConfig))
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingHooks) OnMetadataStart(_ context.Context, provider, _ string) {
	h.events = append(h.events, "metadata:"+provider)
}

func (h *recordingHooks) OnDiffComplete(_ context.Context, mode string, _ int, _ time.Duration, err error) {
	h.events = append(h.events, "diff:"+mode)
}

func (h *recordingHooks) OnRenderStart(_ context.Context, format string) {
	h.events = append(h.events, "render:"+format)
}

func TestHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	ctrl := gomock.NewController(t)
	metadata := deps.NewMockMetadataProvider(ctrl)
	metadata.EXPECT().Name().Return("lockfile").AnyTimes()
	metadata.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(depgraph.New(), nil)

	res, err := NewRunner(metadata, StaticRegistry(deps.NewMockRegistryProvider(ctrl)), quiet()).
		Execute(context.Background(), Options{})
	require.NoError(t, err)
	require.NoError(t, Render(context.Background(), io.Discard, res.Report, render.FormatSimple, render.Options{}))

	assert.Equal(t, []string{"metadata:lockfile", "diff:workspace", "render:simple"}, hooks.events)
}

func TestRender(t *testing.T) {
	ctrl := gomock.NewController(t)
	res, err := NewRunner(deps.NewMockMetadataProvider(ctrl), StaticRegistry(deps.NewMockRegistryProvider(ctrl)), quiet()).
		Execute(context.Background(), Options{Requests: requests(t, "serde@1.0.0-1.0.1"), ComparisonLinks: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, res.Report, render.FormatJSON, render.Options{ComparisonLinks: true}))
	var doc render.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, res.Report.RunID, doc.RunID)
	assert.Equal(t, "https://diff.rs/serde/1.0.0/1.0.1", doc.Targets[0].Diffs[0].Link)

	buf.Reset()
	require.NoError(t, Render(context.Background(), &buf, res.Report, render.FormatDOT, render.Options{}))
	assert.Contains(t, buf.String(), "digraph G")

	err = Render(context.Background(), &buf, res.Report, "pdf", render.Options{})
	assert.True(t, cderrors.Is(err, cderrors.ErrCodeInvalidFormat))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType(render.FormatJSON))
	assert.Equal(t, "image/svg+xml", ContentType(render.FormatSVG))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType(render.FormatVerbose))
}
