// Package vcs maps published crate versions to commits via repository tags.
//
// It is the fallback used when a crate archive carries no
// .cargo_vcs_info.json: the remote's tags are listed with go-git (no clone,
// in-memory storage) and matched against the usual release tag layouts.
package vcs

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/matzehuels/cratediff/pkg/errors"
)

// Tag is a remote tag with the commit it points to.
type Tag struct {
	Name string
	Hash string
}

// Lister lists the tags of a remote repository.
type Lister interface {
	ListTags(ctx context.Context, url string) ([]Tag, error)
}

// RemoteLister lists tags with go-git.
type RemoteLister struct{}

// ListTags implements Lister. Annotated tags resolve to the commit they
// point to.
func (RemoteLister) ListTags(ctx context.Context, url string) ([]Tag, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{PeelingOption: git.AppendPeeled})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLookupFailed, err, "cannot list tags of %s", url)
	}
	return tagsFromRefs(refs), nil
}

const (
	tagPrefix    = "refs/tags/"
	peeledSuffix = "^{}"
)

func tagsFromRefs(refs []*plumbing.Reference) []Tag {
	peeled := make(map[string]string)
	var names []string
	direct := make(map[string]string)
	for _, ref := range refs {
		if !ref.Name().IsTag() {
			continue
		}
		name := strings.TrimPrefix(ref.Name().String(), tagPrefix)
		if base, ok := strings.CutSuffix(name, peeledSuffix); ok {
			peeled[base] = ref.Hash().String()
			continue
		}
		if _, seen := direct[name]; !seen {
			names = append(names, name)
		}
		direct[name] = ref.Hash().String()
	}

	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		hash := direct[name]
		if p, ok := peeled[name]; ok {
			hash = p
		}
		tags = append(tags, Tag{Name: name, Hash: hash})
	}
	return tags
}

// Candidates returns the tag names a release of crate at version is
// usually published under, most specific first.
func Candidates(crate, version string) []string {
	return []string{
		crate + "-v" + version,
		crate + "-" + version,
		crate + "@" + version,
		"v" + version,
		version,
	}
}

// MatchTag returns the commit of the first candidate tag present in tags.
func MatchTag(tags []Tag, crate, version string) (string, bool) {
	byName := make(map[string]string, len(tags))
	for _, t := range tags {
		byName[t.Name] = t.Hash
	}
	for _, c := range Candidates(crate, version) {
		if hash, ok := byName[c]; ok {
			return hash, true
		}
	}
	return "", false
}

// TagResolver finds release commits by tag. Tag lists are fetched once per
// repository.
type TagResolver struct {
	lister Lister
	logger *log.Logger

	mu   sync.Mutex
	tags map[string][]Tag
	errs map[string]error
}

// NewTagResolver creates a resolver. A nil lister uses [RemoteLister].
func NewTagResolver(lister Lister, logger *log.Logger) *TagResolver {
	if lister == nil {
		lister = RemoteLister{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TagResolver{
		lister: lister,
		logger: logger,
		tags:   make(map[string][]Tag),
		errs:   make(map[string]error),
	}
}

// Resolve returns the commit tagged for crate at version in repo.
func (r *TagResolver) Resolve(ctx context.Context, repo, crate, version string) (string, error) {
	if repo == "" {
		return "", errors.New(errors.ErrCodeLookupFailed, "no repository for %s@%s", crate, version)
	}
	tags, err := r.list(ctx, repo)
	if err != nil {
		return "", err
	}
	hash, ok := MatchTag(tags, crate, version)
	if !ok {
		return "", errors.New(errors.ErrCodeNotFound, "no release tag for %s@%s in %s", crate, version, repo)
	}
	r.logger.Debug("commit from release tag", "crate", crate, "version", version, "hash", hash)
	return hash, nil
}

func (r *TagResolver) list(ctx context.Context, repo string) ([]Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tags, ok := r.tags[repo]; ok {
		return tags, nil
	}
	if err, ok := r.errs[repo]; ok {
		return nil, err
	}
	tags, err := r.lister.ListTags(ctx, repo)
	if err != nil {
		r.errs[repo] = err
		return nil, err
	}
	r.tags[repo] = tags
	return tags, nil
}
