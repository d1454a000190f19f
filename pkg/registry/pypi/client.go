// Package pypi provides a client for the PyPI package registry, used to
// audit manifest entries against published packages and versions.
package pypi

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/adityaaj2003/tunegan/pkg/httputil"
	"github.com/adityaaj2003/tunegan/pkg/manifest"
	"github.com/adityaaj2003/tunegan/pkg/registry"
)

// DefaultBaseURL is the PyPI JSON API endpoint.
const DefaultBaseURL = "https://pypi.org/pypi"

// PackageInfo holds metadata for a Python package from PyPI.
//
// Package names are normalized following PEP 503 (lowercase,
// underscores→hyphens). Releases lists every published version string.
type PackageInfo struct {
	Name     string   `json:"name"`     // Normalized package name
	Version  string   `json:"version"`  // Latest version string
	Summary  string   `json:"summary"`  // Short package description (may be empty)
	Releases []string `json:"releases"` // All published versions
}

// HasRelease reports whether version was published for this package.
func (p *PackageInfo) HasRelease(version string) bool {
	return slices.Contains(p.Releases, version)
}

// Client provides access to the PyPI package registry API.
// It handles HTTP requests with caching and automatic retries.
type Client struct {
	*registry.Client
	baseURL string
}

// NewClient creates a PyPI client backed by the given HTTP response cache.
// Pass an httputil cache namespaced however the caller prefers; this client
// additionally namespaces its own keys with "pypi:".
func NewClient(cache *httputil.Cache) *Client {
	return &Client{
		Client:  registry.NewClient(cache.Namespace("pypi:"), nil),
		baseURL: DefaultBaseURL,
	}
}

// NewClientWithBaseURL creates a PyPI client against a custom endpoint.
// Used in tests to point at an httptest server.
func NewClientWithBaseURL(cache *httputil.Cache, baseURL string) *Client {
	return &Client{
		Client:  registry.NewClient(cache.Namespace("pypi:"), nil),
		baseURL: baseURL,
	}
}

// FetchPackage retrieves metadata for a Python package from PyPI.
//
// The pkg parameter is normalized automatically (PEP 503). If refresh is
// true, the cache is bypassed and a fresh API call is made.
//
// Returns [registry.ErrNotFound] if the package doesn't exist and
// [registry.ErrNetwork] for HTTP failures.
func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = manifest.NormalizeName(pkg)

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data apiResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/%s/json", c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Errorf("%w: pypi package %s", err, pkg)
		}
		return err
	}

	releases := make([]string, 0, len(data.Releases))
	for v := range data.Releases {
		releases = append(releases, v)
	}
	slices.Sort(releases)

	*info = PackageInfo{
		Name:     manifest.NormalizeName(data.Info.Name),
		Version:  data.Info.Version,
		Summary:  data.Info.Summary,
		Releases: releases,
	}
	return nil
}

type apiResponse struct {
	Info     apiInfo          `json:"info"`
	Releases map[string][]any `json:"releases"`
}

type apiInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Summary string `json:"summary"`
}
