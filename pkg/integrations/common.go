package integrations

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/cratediff/pkg/cache"
)

const httpTimeout = 10 * time.Second

// Errors returned by Get. They alias the cache sentinels so callers can
// test either with errors.Is.
var (
	ErrNotFound = cache.ErrNotFound
	ErrNetwork  = cache.ErrNetwork
)

// NewHTTPClient returns the http.Client used for API calls.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var sshHosts = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
)

// NormalizeRepoURL rewrites a crate's repository field to a browsable
// https URL without a .git suffix or trailing slash.
func NormalizeRepoURL(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "git+")
	if s == "" {
		return ""
	}
	s = strings.TrimSuffix(sshHosts.Replace(s), "/")
	return strings.TrimSuffix(s, ".git")
}

// URLEncode escapes s as one URL path segment.
func URLEncode(s string) string { return url.PathEscape(s) }
