package cargo

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratediff/pkg/errors"
)

// Info holds the fields of `cargo info` output used for diffing.
type Info struct {
	// Version is the version cargo describes: the requested one, or the
	// version locked by the current workspace.
	Version *semver.Version
	// Latest is the newest published version. It equals Version when cargo
	// does not print a separate "(latest ...)" note.
	Latest     *semver.Version
	Repository string
	Homepage   string
}

// Pick returns Version for pinned lookups and Latest otherwise.
func (i Info) Pick(pinned bool) *semver.Version {
	if pinned {
		return i.Version
	}
	return i.Latest
}

const githubPrefix = "https://github.com/"

// ParseInfo extracts an [Info] from `cargo info` output. A missing version
// line leaves the versions nil; an unparsable one is an error, with the
// remaining fields still filled in.
//
// When no repository line is present, a GitHub homepage trimmed to
// https://github.com/<owner>/<repo> is used instead.
func ParseInfo(output string) (Info, error) {
	var info Info
	var versionLine string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case versionLine == "" && strings.HasPrefix(line, "version: "):
			versionLine = strings.TrimPrefix(line, "version: ")
		case info.Repository == "" && strings.HasPrefix(line, "repository: "):
			info.Repository = strings.TrimSpace(strings.TrimPrefix(line, "repository: "))
		case info.Homepage == "" && strings.HasPrefix(line, "homepage: "):
			info.Homepage = strings.TrimSpace(strings.TrimPrefix(line, "homepage: "))
		}
	}

	if info.Repository == "" {
		info.Repository = githubRepo(info.Homepage)
	}
	if versionLine == "" {
		return info, nil
	}

	current, latest := versionLine, ""
	if cur, rest, ok := strings.Cut(versionLine, " (latest "); ok {
		current, latest = cur, strings.TrimSuffix(rest, ")")
	}

	v, err := semver.StrictNewVersion(strings.TrimSpace(current))
	if err != nil {
		return info, errors.Wrap(errors.ErrCodeLookupFailed, err, "invalid version %q", current)
	}
	info.Version, info.Latest = v, v
	if latest != "" {
		l, err := semver.StrictNewVersion(strings.TrimSpace(latest))
		if err != nil {
			return info, errors.Wrap(errors.ErrCodeLookupFailed, err, "invalid latest version %q", latest)
		}
		info.Latest = l
	}
	return info, nil
}

func githubRepo(homepage string) string {
	if !strings.HasPrefix(homepage, githubPrefix) {
		return ""
	}
	parts := strings.Split(homepage, "/")
	if len(parts) < 5 {
		return ""
	}
	return strings.Join(parts[:5], "/")
}
