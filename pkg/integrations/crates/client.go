package crates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/cratediff/pkg/buildinfo"
	"github.com/matzehuels/cratediff/pkg/cache"
	"github.com/matzehuels/cratediff/pkg/integrations"
)

// DefaultBaseURL is the crates.io API root.
const DefaultBaseURL = "https://crates.io/api/v1"

// CrateInfo holds metadata for a Rust crate from crates.io.
//
// Version is the newest stable version (max_stable_version), falling back
// to max_version for crates that never published a stable release.
type CrateInfo struct {
	Name        string        `json:"name"`
	Version     string        `json:"version"`
	Repository  string        `json:"repository,omitempty"`
	HomePage    string        `json:"homepage,omitempty"`
	Description string        `json:"description,omitempty"`
	Versions    []VersionInfo `json:"versions,omitempty"` // Newest first, as served by the API
}

// VersionInfo describes one published version.
type VersionInfo struct {
	Num    string `json:"num"`
	Yanked bool   `json:"yanked"`
}

// Client provides access to the crates.io API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client with the given cache backend.
//
// The client sends the User-Agent header crates.io requires.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return NewClientWithURL(backend, cacheTTL, DefaultBaseURL)
}

// NewClientWithURL is NewClient for a mirror or test server at baseURL.
func NewClientWithURL(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent(),
	}
	return &Client{
		Client:  integrations.NewClient(backend, "crates", cacheTTL, headers),
		baseURL: baseURL,
	}
}

// FetchCrate retrieves metadata for a crate. With refresh set the cache is
// bypassed.
//
// Returns [integrations.ErrNotFound] (wrapped) for unknown crates and
// [integrations.ErrNetwork] for transport failures.
func (c *Client) FetchCrate(ctx context.Context, crate string, refresh bool) (*CrateInfo, error) {
	var info CrateInfo
	err := c.Cached(ctx, crate, refresh, &info, func() error {
		return c.fetch(ctx, crate, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// FetchVersion retrieves one published version of a crate.
func (c *Client) FetchVersion(ctx context.Context, crate, version string, refresh bool) (*VersionInfo, error) {
	var info VersionInfo
	err := c.Cached(ctx, crate+"@"+version, refresh, &info, func() error {
		var data versionResponse
		url := fmt.Sprintf("%s/crates/%s/%s", c.baseURL, integrations.URLEncode(crate), integrations.URLEncode(version))
		if err := c.Get(ctx, url, &data); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: crate %s@%s", err, crate, version)
			}
			return err
		}
		info = VersionInfo{Num: data.Version.Num, Yanked: data.Version.Yanked}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, crate string, info *CrateInfo) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, integrations.URLEncode(crate)), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	version := data.Crate.MaxStableVersion
	if version == "" {
		version = data.Crate.MaxVersion
	}
	*info = CrateInfo{
		Name:        data.Crate.Name,
		Version:     version,
		Repository:  integrations.NormalizeRepoURL(data.Crate.Repository),
		HomePage:    data.Crate.HomePage,
		Description: data.Crate.Description,
	}
	for _, v := range data.Versions {
		info.Versions = append(info.Versions, VersionInfo{Num: v.Num, Yanked: v.Yanked})
	}
	return nil
}

type crateResponse struct {
	Crate struct {
		Name             string `json:"name"`
		MaxVersion       string `json:"max_version"`
		MaxStableVersion string `json:"max_stable_version"`
		Description      string `json:"description"`
		Repository       string `json:"repository"`
		HomePage         string `json:"homepage"`
	} `json:"crate"`
	Versions []struct {
		Num    string `json:"num"`
		Yanked bool   `json:"yanked"`
	} `json:"versions"`
}

type versionResponse struct {
	Version struct {
		Num    string `json:"num"`
		Yanked bool   `json:"yanked"`
	} `json:"version"`
}
