// Package crate models Cargo package identities and diff requests.
//
// A package id as emitted by `cargo metadata` has one of two shapes:
//
//	<source>+<path>#<name>@<version>
//	<source>+<path>#<version>
//
// In the second shape the crate name is the last segment of <path> (with any
// `?query` suffix removed for git sources). [Parse] decodes both shapes into
// an [Identity]; [Identity.ID] re-encodes the canonical first shape.
package crate

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratediff/pkg/errors"
)

// SourceKind classifies where a package comes from.
type SourceKind int

const (
	SourceUnsupported SourceKind = iota
	SourceRegistry
	SourcePath
	SourceGit
)

func (k SourceKind) String() string {
	switch k {
	case SourceRegistry:
		return "registry"
	case SourcePath:
		return "path"
	case SourceGit:
		return "git"
	default:
		return "unsupported"
	}
}

// Source is the scheme part of a package id. Raw keeps the original text so
// unsupported schemes (e.g. "sparse") survive a round trip.
type Source struct {
	Kind SourceKind
	Raw  string
}

// NewSource classifies a scheme string.
func NewSource(raw string) Source {
	kind := SourceUnsupported
	switch raw {
	case "registry", "sparse":
		// sparse+https://index.crates.io/ behaves like any other registry.
		kind = SourceRegistry
	case "path":
		kind = SourcePath
	case "git":
		kind = SourceGit
	}
	return Source{Kind: kind, Raw: raw}
}

func (s Source) String() string { return s.Raw }

// IsLocal reports whether the package lives in the local filesystem.
func (s Source) IsLocal() bool { return s.Kind == SourcePath }

// Identity is a parsed package id.
type Identity struct {
	Source  Source
	Path    string
	Name    string
	Version *semver.Version
}

// ID returns the canonical package id.
func (id Identity) ID() string {
	var b strings.Builder
	b.WriteString(id.Source.Raw)
	b.WriteByte('+')
	b.WriteString(id.Path)
	b.WriteByte('#')
	b.WriteString(id.Name)
	if id.Version != nil {
		b.WriteByte('@')
		b.WriteString(id.Version.Original())
	}
	return b.String()
}

// String returns name@version.
func (id Identity) String() string {
	if id.Version == nil {
		return id.Name
	}
	return id.Name + "@" + id.Version.Original()
}

// Parse decodes a package id. Malformed ids yield an INVALID_PACKAGE_ID
// error and no identity.
func Parse(id string) (Identity, error) {
	scheme, rest, ok := strings.Cut(id, "+")
	if !ok || scheme == "" {
		return Identity{}, errors.New(errors.ErrCodeInvalidPackageID, "missing source in %q", id)
	}
	hash := strings.LastIndexByte(rest, '#')
	if hash < 0 {
		return Identity{}, errors.New(errors.ErrCodeInvalidPackageID, "missing '#' in %q", id)
	}
	path, fragment := rest[:hash], rest[hash+1:]
	if path == "" {
		return Identity{}, errors.New(errors.ErrCodeInvalidPackageID, "empty path in %q", id)
	}
	src := NewSource(scheme)

	name, version, hasName := strings.Cut(fragment, "@")
	if !hasName {
		version = fragment
		name = nameFromPath(src, path)
	}
	if name == "" {
		return Identity{}, errors.New(errors.ErrCodeInvalidPackageID, "no crate name in %q", id)
	}

	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return Identity{}, errors.Wrap(errors.ErrCodeInvalidPackageID, err, "invalid version %q in %q", version, id)
	}

	return Identity{Source: src, Path: path, Name: name, Version: v}, nil
}

// ParseSource extracts only the source of a package id. It is cheaper than
// Parse and tolerates malformed fragments.
func ParseSource(id string) (Source, error) {
	scheme, _, ok := strings.Cut(id, "+")
	if !ok || scheme == "" {
		return Source{}, errors.New(errors.ErrCodeInvalidPackageID, "missing source in %q", id)
	}
	return NewSource(scheme), nil
}

func nameFromPath(src Source, path string) string {
	name := path
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if src.Kind == SourceGit {
		if i := strings.IndexByte(name, '?'); i >= 0 {
			name = name[:i]
		}
	}
	return name
}
