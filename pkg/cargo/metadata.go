package cargo

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/errors"
)

// Metadata is a [deps.MetadataProvider] backed by `cargo metadata`.
type Metadata struct {
	runner *Runner
	logger *log.Logger
}

var _ deps.MetadataProvider = (*Metadata)(nil)

// NewMetadata creates a metadata provider that runs cargo through runner.
func NewMetadata(runner *Runner, logger *log.Logger) *Metadata {
	if logger == nil {
		logger = log.Default()
	}
	return &Metadata{runner: runner, logger: logger}
}

func (m *Metadata) Name() string { return "cargo" }

// Resolve runs `cargo metadata` for the manifest at manifestPath.
func (m *Metadata) Resolve(ctx context.Context, manifestPath string) (*depgraph.Graph, error) {
	file := deps.ManifestFile(manifestPath)
	out, err := m.runner.Run(ctx, "metadata", "--format-version", "1", "--manifest-path", file)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadata, err, "cannot get metadata for %s", file)
	}
	g, err := ParseMetadata([]byte(out), m.logger)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadata, err, "cannot decode metadata for %s", file)
	}
	return g, nil
}

// ParseMetadata converts `cargo metadata --format-version 1` JSON into a
// graph. Output without a resolve section yields an empty graph.
func ParseMetadata(data []byte, logger *log.Logger) (*depgraph.Graph, error) {
	if logger == nil {
		logger = log.Default()
	}

	var md metadataOutput
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, err
	}

	g := depgraph.New()
	if md.Resolve == nil {
		logger.Warn("metadata is not resolved", "workspace", md.WorkspaceRoot)
		return g, nil
	}

	manifests := make(map[string]string, len(md.Packages))
	for _, p := range md.Packages {
		manifests[p.ID] = p.ManifestPath
	}

	for _, n := range md.Resolve.Nodes {
		if err := g.AddNode(depgraph.Node{ID: n.ID, ManifestPath: manifests[n.ID]}); err != nil {
			logger.Warn("skipping resolve node", "id", n.ID, "err", err)
		}
	}
	for _, n := range md.Resolve.Nodes {
		for _, dep := range n.Dependencies {
			if err := g.AddEdge(n.ID, dep); err != nil {
				logger.Debug("skipping dependency edge", "from", n.ID, "to", dep, "err", err)
			}
		}
	}
	for _, id := range md.WorkspaceMembers {
		if err := g.AddMember(id); err != nil {
			logger.Warn("workspace member is not resolved", "id", id)
		}
	}
	return g, nil
}

type metadataOutput struct {
	Packages []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Version      string `json:"version"`
		ManifestPath string `json:"manifest_path"`
	} `json:"packages"`
	WorkspaceMembers []string `json:"workspace_members"`
	WorkspaceRoot    string   `json:"workspace_root"`
	Resolve          *struct {
		Nodes []struct {
			ID           string   `json:"id"`
			Dependencies []string `json:"dependencies"`
		} `json:"nodes"`
	} `json:"resolve"`
}
