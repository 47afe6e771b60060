package crate

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders two optional versions. A nil version sorts before
// any concrete version. Versions with equal precedence are ordered by build
// metadata so that the order is total.
func CompareVersions(a, b *semver.Version) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c := a.Compare(b); c != 0 {
		return c
	}
	return strings.Compare(a.Metadata(), b.Metadata())
}

// SameVersion reports whether a and b denote the same version. Two nil
// versions are the same; build metadata is significant.
func SameVersion(a, b *semver.Version) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return CompareVersions(a, b) == 0
}

// FormatVersion returns the original version text, or "" for nil.
func FormatVersion(v *semver.Version) string {
	if v == nil {
		return ""
	}
	return v.Original()
}

// MustVersion parses a strict SemVer string and panics on failure. It is
// meant for constants and tests.
func MustVersion(s string) *semver.Version {
	return semver.MustParse(s)
}
