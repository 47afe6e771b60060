package lockfile

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/workspace"
)

const lockV4 = `# This file is automatically @generated by Cargo.
version = 4

[[package]]
name = "app"
version = "0.1.0"
dependencies = [
 "lib",
 "serde 1.0.200",
 "tokio",
]

[[package]]
name = "lib"
version = "0.2.0"
dependencies = [
 "serde 1.0.226",
 "mygit",
]

[[package]]
name = "mygit"
version = "0.3.0"
source = "git+https://github.com/owner/mygit?branch=main#0123456789abcdef0123456789abcdef01234567"

[[package]]
name = "serde"
version = "1.0.200"
source = "registry+https://github.com/rust-lang/crates.io-index"
checksum = "aaaa"

[[package]]
name = "serde"
version = "1.0.226"
source = "registry+https://github.com/rust-lang/crates.io-index"
checksum = "bbbb"
dependencies = [
 "serde_core",
]

[[package]]
name = "serde_core"
version = "1.0.226"
source = "registry+https://github.com/rust-lang/crates.io-index"

[[package]]
name = "tokio"
version = "1.47.1"
source = "sparse+https://index.crates.io/"
`

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Cargo.toml":          "[workspace]\nmembers = [\"crates/*\"]\nresolver = \"2\"\n",
		"Cargo.lock":          lockV4,
		"crates/app/Cargo.toml": "[package]\nname = \"app\"\nversion = \"0.1.0\"\n",
		"crates/lib/Cargo.toml": "[package]\nname = \"lib\"\nversion = \"0.2.0\"\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestResolveWorkspace(t *testing.T) {
	dir := writeWorkspace(t)
	p := New("/home/u/.cargo/registry/src/index.crates.io-1949cf8c6b5b557f", nil)
	assert.Equal(t, "lockfile", p.Name())

	g, err := p.Resolve(context.Background(), filepath.Join(dir, "Cargo.toml"))
	require.NoError(t, err)
	assert.Equal(t, 7, g.NodeCount())
	assert.Len(t, g.Members(), 2)

	members := workspace.DirectDependencies(g, nil)
	require.Len(t, members, 2)

	byName := map[string][]string{}
	for _, m := range members {
		for _, d := range m.Dependencies {
			byName[m.Name] = append(byName[m.Name], d.Name+"@"+d.Version.String())
		}
	}
	assert.Equal(t, []string{"serde@1.0.200", "tokio@1.47.1"}, byName["app"])
	assert.Equal(t, []string{"serde@1.0.226", "mygit@0.3.0"}, byName["lib"])

	nested := workspace.NestedPackages(g, nil)
	require.Len(t, nested, 1)
	assert.Equal(t, "serde_core", nested[0].Name)

	root, ok := workspace.RegistryPath(g)
	require.True(t, ok)
	assert.Equal(t, "/home/u/.cargo/registry/src/index.crates.io-1949cf8c6b5b557f", filepath.ToSlash(root))
}

func TestGitSourceDropsCommit(t *testing.T) {
	dir := writeWorkspace(t)
	g, err := New("", nil).Resolve(context.Background(), dir)
	require.NoError(t, err)

	_, ok := g.Node("git+https://github.com/owner/mygit?branch=main#mygit@0.3.0")
	assert.True(t, ok)
	_, ok = workspace.RegistryPath(g)
	assert.False(t, ok)
}

func TestSinglePackageWithoutWorkspaceTable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"solo\"\nversion = \"1.0.0\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte(`version = 3

[[package]]
name = "solo"
version = "1.0.0"
dependencies = ["itoa"]

[[package]]
name = "itoa"
version = "1.0.15"
source = "registry+https://github.com/rust-lang/crates.io-index"
`), 0o644))

	g, err := New("", nil).Resolve(context.Background(), dir)
	require.NoError(t, err)
	members := workspace.DirectDependencies(g, nil)
	require.Len(t, members, 1)
	assert.Equal(t, "solo", members[0].Name)
	require.Len(t, members[0].Dependencies, 1)
	assert.Equal(t, "itoa", members[0].Dependencies[0].Name)
}

func TestDuplicateLockEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"solo\"\nversion = \"1.0.0\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte(`version = 4

[[package]]
name = "solo"
version = "1.0.0"
dependencies = ["itoa"]

[[package]]
name = "solo"
version = "1.0.0"
dependencies = ["itoa"]

[[package]]
name = "itoa"
version = "1.0.15"
source = "registry+https://github.com/rust-lang/crates.io-index"
`), 0o644))

	var buf bytes.Buffer
	g, err := New("", log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})).Resolve(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, g.NodeCount())
	assert.Len(t, g.Members(), 1)
	members := workspace.DirectDependencies(g, nil)
	require.Len(t, members, 1)
	require.Len(t, members[0].Dependencies, 1, "edges of the duplicate are not doubled")
	assert.Contains(t, buf.String(), "skipping lock entry")
}

func TestResolveErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := New("", nil).Resolve(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeMetadata))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("[package]\nname = \"x\"\n"), 0o644))
	_, err = New("", nil).Resolve(context.Background(), dir)
	assert.True(t, errors.Is(err, errors.ErrCodeMetadata), "missing lockfile")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte("[[package]\n"), 0o644))
	_, err = New("", nil).Resolve(context.Background(), dir)
	assert.True(t, errors.Is(err, errors.ErrCodeMetadata), "invalid lockfile")
}

func TestLookupDependency(t *testing.T) {
	pkgs := []lockPackage{
		{Name: "a", Version: "1.0.0", Source: "registry+x"},
		{Name: "a", Version: "2.0.0", Source: "registry+x"},
		{Name: "a", Version: "2.0.0", Source: "git+y"},
		{Name: "b", Version: "0.1.0"},
	}
	byName := map[string][]int{"a": {0, 1, 2}, "b": {3}}

	tests := []struct {
		spec string
		want int
		ok   bool
	}{
		{"b", 3, true},
		{"a", 0, false},
		{"a 1.0.0", 0, true},
		{"a 2.0.0 (git+y)", 2, true},
		{"a 2.0.0 (registry+x)", 1, true},
		{"a 3.0.0", 0, false},
		{"c", 0, false},
	}
	for _, tt := range tests {
		got, ok := lookupDependency(pkgs, byName, tt.spec)
		assert.Equal(t, tt.ok, ok, tt.spec)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.spec)
		}
	}
}
