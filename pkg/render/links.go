package render

import (
	"strings"

	"github.com/matzehuels/cratediff/pkg/crate"
	"github.com/matzehuels/cratediff/pkg/diff"
)

const (
	githubPrefix = "https://github.com/"
	diffRSBase   = "https://diff.rs"
	shortHash    = 7
)

func isGitHub(repo string) bool { return strings.HasPrefix(repo, githubPrefix) }

func short(hash string) string {
	if len(hash) > shortHash {
		return hash[:shortHash]
	}
	return hash
}

// CompareLink returns the GitHub compare page between the two commits of
// an updated record, or "" when the repository is not on GitHub or a hash
// is missing.
func CompareLink(r diff.Record) string {
	if !isGitHub(r.Repository) || r.FromHash == "" || r.ToHash == "" {
		return ""
	}
	return r.Repository + "/compare/" + short(r.FromHash) + "..." + short(r.ToHash)
}

// CommitLink returns the GitHub page of one commit, or "".
func CommitLink(repo, hash string) string {
	if !isGitHub(repo) || hash == "" {
		return ""
	}
	return repo + "/commit/" + hash
}

// DiffRSLink returns the diff.rs page for a record: a source diff for
// updates, a source browser for added or removed crates, "" otherwise.
func DiffRSLink(r diff.Record) string {
	switch r.Kind() {
	case diff.KindUpdated:
		return diffRSBase + "/" + r.Name + "/" + crate.FormatVersion(r.From) + "/" + crate.FormatVersion(r.To)
	case diff.KindAdded:
		return diffRSBase + "/browse/" + r.Name + "/" + crate.FormatVersion(r.To)
	case diff.KindRemoved:
		return diffRSBase + "/browse/" + r.Name + "/" + crate.FormatVersion(r.From)
	default:
		return ""
	}
}

// Link is the single most useful link for r in the given mode.
func Link(r diff.Record, comparison bool) string {
	if comparison {
		return DiffRSLink(r)
	}
	switch r.Kind() {
	case diff.KindUpdated:
		return CompareLink(r)
	case diff.KindAdded:
		return CommitLink(r.Repository, r.ToHash)
	case diff.KindRemoved:
		return CommitLink(r.Repository, r.FromHash)
	default:
		return ""
	}
}
