package registry

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratediff/pkg/depgraph"
	"github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/workspace"
)

// EnvCargoHome overrides the cargo home directory.
const EnvCargoHome = "CARGO_HOME"

// cratesIOPrefix names crates.io source directories below registry/src.
const cratesIOPrefix = "index.crates.io-"

// CargoHome returns $CARGO_HOME, or ~/.cargo when unset.
func CargoHome() (string, error) {
	if home := os.Getenv(EnvCargoHome); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "cannot determine cargo home")
	}
	return filepath.Join(userHome, ".cargo"), nil
}

// Discovery is the result of scanning a cargo home for crates.io sources.
type Discovery struct {
	Path      string   // Chosen source directory
	Discarded []string // Other candidates, in lexicographic order
}

// Ambiguous reports whether more than one candidate was found.
func (d Discovery) Ambiguous() bool { return len(d.Discarded) > 0 }

// Discover scans <cargoHome>/registry/src for crates.io source directories.
// Candidates are sorted and the first one wins; the others are returned as
// Discarded so the caller can report them.
func Discover(cargoHome string) (Discovery, error) {
	if _, err := os.Stat(cargoHome); err != nil {
		return Discovery{}, errors.Wrap(errors.ErrCodeNotFound, err, "cargo home %s does not exist", cargoHome)
	}
	src := filepath.Join(cargoHome, "registry", "src")
	entries, err := os.ReadDir(src)
	if err != nil {
		return Discovery{}, errors.Wrap(errors.ErrCodeNotFound, err, "cannot read %s", src)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), cratesIOPrefix) {
			candidates = append(candidates, filepath.Join(src, e.Name()))
		}
	}
	if len(candidates) == 0 {
		return Discovery{}, errors.New(errors.ErrCodeNotFound, "no crates.io registry sources in %s", src)
	}
	sort.Strings(candidates)
	return Discovery{Path: candidates[0], Discarded: candidates[1:]}, nil
}

// Root picks the crates.io source directory: explicit wins, then the
// directory implied by registry packages in g, then discovery below
// cargoHome. Ambiguous discoveries are logged, never fatal.
func Root(explicit string, g *depgraph.Graph, cargoHome string, logger *log.Logger) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if g != nil {
		if root, ok := workspace.RegistryPath(g); ok {
			return root, nil
		}
	}
	if cargoHome == "" {
		home, err := CargoHome()
		if err != nil {
			return "", err
		}
		cargoHome = home
	}
	d, err := Discover(cargoHome)
	if err != nil {
		return "", err
	}
	if d.Ambiguous() {
		if logger == nil {
			logger = log.Default()
		}
		logger.Warn("several registry sources found, using the first",
			"code", errors.ErrCodeAmbiguous, "path", d.Path, "discarded", d.Discarded)
	}
	return d.Path, nil
}
