// Package workspace derives the views of a dependency graph that the diff
// builder needs: each member's direct registry dependencies, where a given
// crate is used, and the set of purely transitive ("nested") packages.
//
// All functions are read-only over a [depgraph.Graph]. Package ids that do
// not parse are skipped with a warning; they never abort the extraction.
package workspace

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/depgraph"
)

// Member is a workspace member with its direct, non-local dependencies.
type Member struct {
	Name         string
	ID           string
	Dependencies []crate.Identity
}

// TargetVersion is one member's use of a crate.
type TargetVersion struct {
	Target   string
	Identity crate.Identity
}

// DirectDependencies returns every workspace member, in member order, with
// its direct dependencies that do not come from a local path.
func DirectDependencies(g *depgraph.Graph, logger *log.Logger) []Member {
	logger = orDefault(logger)

	var members []Member
	for _, id := range g.Members() {
		ident, err := crate.Parse(id)
		if err != nil {
			logger.Warn("skipping workspace member", "id", id, "err", err)
			continue
		}
		m := Member{Name: ident.Name, ID: id}
		for _, depID := range g.Dependencies(id) {
			dep, err := crate.Parse(depID)
			if err != nil {
				logger.Warn("skipping dependency", "member", ident.Name, "id", depID, "err", err)
				continue
			}
			if dep.Source.IsLocal() {
				continue
			}
			m.Dependencies = append(m.Dependencies, dep)
		}
		members = append(members, m)
	}
	return members
}

// DependencyInfo returns, for each member that directly depends on name,
// the identity it resolves to. Renamed dependencies are matched by their
// package name, not the alias.
func DependencyInfo(g *depgraph.Graph, name string, logger *log.Logger) []TargetVersion {
	var out []TargetVersion
	for _, m := range DirectDependencies(g, logger) {
		for _, dep := range m.Dependencies {
			if dep.Name == name {
				out = append(out, TargetVersion{Target: m.Name, Identity: dep})
				break
			}
		}
	}
	return out
}

// NestedPackages returns every package that is neither a workspace member
// nor a direct non-local dependency of any member, in graph order.
func NestedPackages(g *depgraph.Graph, logger *log.Logger) []crate.Identity {
	logger = orDefault(logger)

	excluded := make(map[string]bool)
	for _, id := range g.Members() {
		excluded[id] = true
		for _, depID := range g.Dependencies(id) {
			src, err := crate.ParseSource(depID)
			if err != nil {
				continue
			}
			if !src.IsLocal() {
				excluded[depID] = true
			}
		}
	}

	var nested []crate.Identity
	for _, n := range g.Nodes() {
		if excluded[n.ID] {
			continue
		}
		ident, err := crate.Parse(n.ID)
		if err != nil {
			logger.Warn("skipping nested package", "id", n.ID, "err", err)
			continue
		}
		nested = append(nested, ident)
	}
	return nested
}

// registryMarker identifies crates.io source directories in manifest paths.
const registryMarker = ".cargo/registry/src/index.crates.io-"

// RegistryPath infers the crates.io source root from the manifest path of
// any registry package in g (<root>/<name>-<version>/Cargo.toml).
func RegistryPath(g *depgraph.Graph) (string, bool) {
	for _, n := range g.Nodes() {
		if n.ManifestPath == "" {
			continue
		}
		root := filepath.Dir(filepath.Dir(n.ManifestPath))
		if strings.Contains(filepath.ToSlash(root), registryMarker) {
			return root, true
		}
	}
	return "", false
}

func orDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
