package deps

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/cratediff/pkg/errors"
)

// ManifestName is the Cargo manifest filename.
const ManifestName = "Cargo.toml"

// ManifestFile returns the Cargo.toml for path, which may name a project
// directory or the manifest itself. An empty path means the current
// directory.
func ManifestFile(path string) string {
	if path == "" {
		path = "."
	}
	if filepath.Base(path) == ManifestName {
		return path
	}
	return filepath.Join(path, ManifestName)
}

// ManifestDir returns the directory containing the manifest for path.
func ManifestDir(path string) string {
	return filepath.Dir(ManifestFile(path))
}

// RequireManifest returns the manifest file for path or an
// INVALID_MANIFEST error when it does not exist.
func RequireManifest(path string) (string, error) {
	file := ManifestFile(path)
	info, err := os.Stat(file)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidManifest, err, "no %s at %s", ManifestName, ManifestDir(path))
	}
	if info.IsDir() {
		return "", errors.New(errors.ErrCodeInvalidManifest, "%s is a directory", file)
	}
	return file, nil
}
