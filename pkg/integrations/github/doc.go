// Package github lists repository tags through the GitHub REST API.
//
// [Client] implements vcs.Lister for github.com repositories: tags are
// read from /repos/{owner}/{repo}/tags page by page, cached and retried
// like every other integration. Repositories hosted elsewhere are handed
// to a fallback lister (go-git by default).
//
// A token (GITHUB_TOKEN) is optional; unauthenticated clients are limited
// to 60 requests per hour.
package github
