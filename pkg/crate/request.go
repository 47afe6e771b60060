package crate

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/cratediff/pkg/errors"
)

// Request asks for the diff of one crate between two versions. A nil From
// means "whatever the workspace currently uses"; a nil To means "latest".
type Request struct {
	Name string
	From *semver.Version
	To   *semver.Version
}

// HasFrom reports whether the request pins its starting version.
func (r Request) HasFrom() bool { return r.From != nil }

// String renders the request in the command-line grammar.
func (r Request) String() string {
	if r.From == nil && r.To == nil {
		return r.Name
	}
	return r.Name + "@" + FormatVersion(r.From) + "-" + FormatVersion(r.To)
}

// ParseRequest parses `name[@[from]-[to]]`:
//
//	serde               latest vs. the workspace version
//	serde@1.0.225       to 1.0.225 (same as serde@-1.0.225)
//	serde@1.0.224-      from 1.0.224 to latest
//	serde@1.0.224-1.0.228
//
// Pre-release versions cannot be expressed because '-' separates the range.
func ParseRequest(s string) (Request, error) {
	parts := strings.Split(s, "@")
	if len(parts) > 2 {
		return Request{}, errors.New(errors.ErrCodeInvalidRequest, "multiple '@' in %q", s)
	}
	req := Request{Name: parts[0]}
	if err := errors.ValidateCrateName(req.Name); err != nil {
		return Request{}, errors.Wrap(errors.ErrCodeInvalidRequest, err, "invalid crate in %q", s)
	}
	if len(parts) == 1 || parts[1] == "" {
		return req, nil
	}

	bounds := strings.Split(parts[1], "-")
	var from, to string
	switch len(bounds) {
	case 1:
		to = bounds[0]
	case 2:
		from, to = bounds[0], bounds[1]
	default:
		return Request{}, errors.New(errors.ErrCodeInvalidRequest, "multiple '-' in %q", s)
	}

	var err error
	if req.From, err = parseBound(s, from); err != nil {
		return Request{}, err
	}
	if req.To, err = parseBound(s, to); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ParseRequests parses every argument, stopping at the first error.
func ParseRequests(args []string) ([]Request, error) {
	reqs := make([]Request, 0, len(args))
	for _, a := range args {
		r, err := ParseRequest(a)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

func parseBound(arg, s string) (*semver.Version, error) {
	if s == "" {
		return nil, nil
	}
	v, err := semver.StrictNewVersion(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, err, "invalid version %q in %q", s, arg)
	}
	return v, nil
}
