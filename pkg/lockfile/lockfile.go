// Package lockfile builds dependency graphs from Cargo.lock without running
// cargo.
//
// Package ids are synthesized in the `cargo metadata` grammar so the rest
// of the pipeline cannot tell the two providers apart:
//
//	registry+https://github.com/rust-lang/crates.io-index#serde@1.0.200
//	git+https://github.com/owner/repo?branch=main#name@0.1.0
//	path+file:///ws/crates/app#app@0.1.0
//
// Workspace members come from Cargo.toml ([package] plus [workspace]
// members globs). Without that information every lock entry lacking a
// source is treated as a member.
package lockfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/errors"
)

// LockName is the Cargo lockfile name.
const LockName = "Cargo.lock"

// Provider is a [deps.MetadataProvider] reading Cargo.toml and Cargo.lock.
type Provider struct {
	// RegistryRoot is the crates.io source directory
	// (<cargo home>/registry/src/index.crates.io-*). When set, registry
	// nodes get manifest paths below it.
	RegistryRoot string
	Logger       *log.Logger
}

var _ deps.MetadataProvider = (*Provider)(nil)

// New creates a lockfile provider.
func New(registryRoot string, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.Default()
	}
	return &Provider{RegistryRoot: registryRoot, Logger: logger}
}

func (p *Provider) Name() string { return "lockfile" }

// Resolve reads the lockfile next to the manifest at manifestPath.
func (p *Provider) Resolve(ctx context.Context, manifestPath string) (*depgraph.Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	manifest := deps.ManifestFile(manifestPath)
	dir := filepath.Dir(manifest)

	ws, err := readWorkspace(manifest)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadata, err, "cannot read %s", manifest)
	}
	data, err := os.ReadFile(filepath.Join(dir, LockName))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadata, err, "cannot read %s in %s", LockName, dir)
	}
	lock, err := parseLock(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadata, err, "cannot decode %s in %s", LockName, dir)
	}
	return p.build(dir, ws, lock), nil
}

type lockFile struct {
	Version  int           `toml:"version"`
	Packages []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Dependencies []string `toml:"dependencies"`
}

func parseLock(data []byte) (*lockFile, error) {
	var lf lockFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, err
	}
	return &lf, nil
}

type manifestFile struct {
	Package struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"package"`
	Workspace struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

// workspaceDirs maps member package names to their directories.
type workspaceDirs map[string]string

func readWorkspace(manifest string) (workspaceDirs, error) {
	var root manifestFile
	if _, err := toml.DecodeFile(manifest, &root); err != nil {
		return nil, err
	}
	dir := filepath.Dir(manifest)
	ws := make(workspaceDirs)
	if root.Package.Name != "" {
		ws[root.Package.Name] = dir
	}

	excluded := make(map[string]bool)
	for _, e := range root.Workspace.Exclude {
		excluded[filepath.Clean(filepath.Join(dir, e))] = true
	}
	for _, pattern := range root.Workspace.Members {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("workspace member %q: %w", pattern, err)
		}
		for _, m := range matches {
			if excluded[filepath.Clean(m)] {
				continue
			}
			var member manifestFile
			if _, err := toml.DecodeFile(filepath.Join(m, deps.ManifestName), &member); err != nil {
				continue
			}
			if member.Package.Name != "" {
				ws[member.Package.Name] = m
			}
		}
	}
	return ws, nil
}

func (p *Provider) build(dir string, ws workspaceDirs, lf *lockFile) *depgraph.Graph {
	g := depgraph.New()
	ids := make([]string, len(lf.Packages))
	byName := make(map[string][]int)

	for i, pkg := range lf.Packages {
		id, manifest := p.packageID(dir, ws, pkg)
		ids[i] = id
		byName[pkg.Name] = append(byName[pkg.Name], i)
		if err := g.AddNode(depgraph.Node{ID: id, ManifestPath: manifest}); err != nil {
			p.Logger.Warn("skipping lock entry", "name", pkg.Name, "version", pkg.Version, "err", err)
		}
	}

	for i, pkg := range lf.Packages {
		for _, spec := range pkg.Dependencies {
			j, ok := lookupDependency(lf.Packages, byName, spec)
			if !ok {
				p.Logger.Warn("unresolved lock dependency", "package", pkg.Name, "dependency", spec)
				continue
			}
			if err := g.AddEdge(ids[i], ids[j]); err != nil {
				p.Logger.Debug("skipping lock dependency edge", "from", ids[i], "to", ids[j], "err", err)
			}
		}
	}

	for i, pkg := range lf.Packages {
		if pkg.Source != "" {
			continue
		}
		if _, member := ws[pkg.Name]; member || len(ws) == 0 {
			if err := g.AddMember(ids[i]); err != nil {
				p.Logger.Debug("skipping workspace member", "id", ids[i], "err", err)
			}
		}
	}
	return g
}

func (p *Provider) packageID(dir string, ws workspaceDirs, pkg lockPackage) (id, manifest string) {
	nameVersion := pkg.Name + "@" + pkg.Version
	switch {
	case pkg.Source == "":
		pkgDir, ok := ws[pkg.Name]
		if !ok {
			pkgDir = filepath.Join(dir, pkg.Name)
		}
		return "path+file://" + filepath.ToSlash(pkgDir) + "#" + nameVersion, filepath.Join(pkgDir, deps.ManifestName)
	case strings.HasPrefix(pkg.Source, "git+"):
		// The lock source carries the resolved commit as fragment.
		src, _, _ := strings.Cut(pkg.Source, "#")
		return src + "#" + nameVersion, ""
	default:
		id = pkg.Source + "#" + nameVersion
		if p.RegistryRoot != "" && isCratesIO(pkg.Source) {
			manifest = filepath.Join(p.RegistryRoot, pkg.Name+"-"+pkg.Version, deps.ManifestName)
		}
		return id, manifest
	}
}

func isCratesIO(source string) bool {
	return source == "registry+https://github.com/rust-lang/crates.io-index" ||
		source == "sparse+https://index.crates.io/"
}

// lookupDependency resolves a lock dependency entry ("name", "name version"
// or "name version (source)") to a package index.
func lookupDependency(pkgs []lockPackage, byName map[string][]int, spec string) (int, bool) {
	fields := strings.SplitN(spec, " ", 3)
	candidates := byName[fields[0]]
	if len(fields) == 1 {
		if len(candidates) == 1 {
			return candidates[0], true
		}
		return 0, false
	}

	var source string
	if len(fields) == 3 {
		source = strings.TrimSuffix(strings.TrimPrefix(fields[2], "("), ")")
	}
	for _, i := range candidates {
		if pkgs[i].Version != fields[1] {
			continue
		}
		if source != "" && pkgs[i].Source != source {
			continue
		}
		return i, true
	}
	return 0, false
}
