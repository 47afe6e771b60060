package github

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/matzehuels/cratediff/pkg/buildinfo"
	"github.com/matzehuels/cratediff/pkg/cache"
	"github.com/matzehuels/cratediff/pkg/errors"
	"github.com/matzehuels/cratediff/pkg/integrations"
	"github.com/matzehuels/cratediff/pkg/vcs"
)

// DefaultBaseURL is the GitHub API root.
const DefaultBaseURL = "https://api.github.com"

const (
	perPage  = 100
	maxPages = 10
)

var repoURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+?)(?:\.git)?/?$`)

// Client lists tags via the GitHub API.
type Client struct {
	*integrations.Client
	baseURL  string
	fallback vcs.Lister
}

var _ vcs.Lister = (*Client)(nil)

// NewClient creates a client. token may be empty.
func NewClient(backend cache.Cache, cacheTTL time.Duration, token string) *Client {
	return NewClientWithURL(backend, cacheTTL, token, DefaultBaseURL)
}

// NewClientWithURL is NewClient for GitHub Enterprise or a test server.
func NewClientWithURL(backend cache.Cache, cacheTTL time.Duration, token, baseURL string) *Client {
	headers := map[string]string{
		"Accept":     "application/vnd.github+json",
		"User-Agent": buildinfo.UserAgent(),
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:   integrations.NewClient(backend, "github", cacheTTL, headers),
		baseURL:  baseURL,
		fallback: vcs.RemoteLister{},
	}
}

// WithFallback replaces the lister used for repositories not on github.com.
func (c *Client) WithFallback(l vcs.Lister) *Client {
	c.fallback = l
	return c
}

// ParseRepoURL extracts owner and repository from a github.com URL.
func ParseRepoURL(url string) (owner, repo string, ok bool) {
	m := repoURLPattern.FindStringSubmatch(integrations.NormalizeRepoURL(url))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ListTags implements vcs.Lister. GitHub already resolves annotated tags
// to the tagged commit.
func (c *Client) ListTags(ctx context.Context, url string) ([]vcs.Tag, error) {
	owner, repo, ok := ParseRepoURL(url)
	if !ok {
		if c.fallback == nil {
			return nil, errors.New(errors.ErrCodeLookupFailed, "%s is not a github.com repository", url)
		}
		return c.fallback.ListTags(ctx, url)
	}

	var tags []vcs.Tag
	err := c.Cached(ctx, "tags:"+owner+"/"+repo, false, &tags, func() error {
		tags = tags[:0]
		for page := 1; page <= maxPages; page++ {
			var batch []tagResponse
			u := fmt.Sprintf("%s/repos/%s/%s/tags?per_page=%d&page=%d", c.baseURL,
				integrations.URLEncode(owner), integrations.URLEncode(repo), perPage, page)
			if err := c.Get(ctx, u, &batch); err != nil {
				return err
			}
			for _, t := range batch {
				tags = append(tags, vcs.Tag{Name: t.Name, Hash: t.Commit.SHA})
			}
			if len(batch) < perPage {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLookupFailed, err, "github tags of %s/%s", owner, repo)
	}
	return tags, nil
}

type tagResponse struct {
	Name   string `json:"name"`
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}
