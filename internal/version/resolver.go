// Package version resolves release tags against the release host.
//
// The CLI accepts either a concrete tag ("v1.2.3") or nothing, which
// means the mutable "latest" alias. Resolution always produces a
// concrete, immutable tag so every subsequent asset URL is reproducible:
// if "latest" changed mid-install, the archive and manifest could
// otherwise come from different releases.
package version

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// ReleaseInfo contains both the original tag and normalized version.
type ReleaseInfo struct {
	Tag     string // Original tag (e.g., "v1.2.3")
	Version string // Normalized version used in asset filenames (e.g., "1.2.3")
}

// Resolver resolves release tags via the GitHub releases API.
type Resolver struct {
	client        *github.Client
	authenticated bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the underlying HTTP client. Overrides the
// GITHUB_TOKEN-derived client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Resolver) {
		r.client = github.NewClient(hc)
	}
}

// WithBaseURL points the resolver at a custom API endpoint (for testing
// against httptest servers). The URL must end with a trailing slash.
func WithBaseURL(baseURL string) Option {
	return func(r *Resolver) {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		if u, err := r.client.BaseURL.Parse(baseURL); err == nil {
			r.client.BaseURL = u
		}
	}
}

// New creates a tag resolver. If the GITHUB_TOKEN environment variable is
// set it is used for authenticated requests, which raises the API rate
// limit.
func New(opts ...Option) *Resolver {
	var httpClient *http.Client
	authenticated := false

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		authenticated = true
	}

	r := &Resolver{
		client:        github.NewClient(httpClient),
		authenticated: authenticated,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve turns a requested tag into a concrete release tag. An empty
// requestedTag (or the literal "latest") resolves the "latest" alias.
// The returned Version always has any leading "v" stripped.
func (r *Resolver) Resolve(ctx context.Context, ownerRepo, requestedTag string) (*ReleaseInfo, error) {
	owner, repo, err := splitOwnerRepo(ownerRepo)
	if err != nil {
		return nil, err
	}

	var release *github.RepositoryRelease
	if requestedTag == "" || requestedTag == "latest" {
		release, _, err = r.client.Repositories.GetLatestRelease(ctx, owner, repo)
	} else {
		release, _, err = r.client.Repositories.GetReleaseByTag(ctx, owner, repo, requestedTag)
		// Tags are conventionally v-prefixed; accept "1.2.3" as a
		// convenience and retry with the prefix.
		if isNotFound(err) && !strings.HasPrefix(requestedTag, "v") {
			release, _, err = r.client.Repositories.GetReleaseByTag(ctx, owner, repo, "v"+requestedTag)
		}
	}

	if err != nil {
		return nil, r.wrapAPIError(err, ownerRepo, requestedTag)
	}

	tag := release.GetTagName()
	if tag == "" {
		return nil, &ResolverError{
			Type:    ErrTypeParsing,
			Repo:    ownerRepo,
			Message: "release metadata contains no tag name",
		}
	}

	return &ReleaseInfo{
		Tag:     tag,
		Version: normalizeVersion(tag),
	}, nil
}

// ListVersions lists published release tags, newest first. Tags that
// parse as semantic versions are ordered by version; the rest keep the
// API's ordering at the end of the list.
func (r *Resolver) ListVersions(ctx context.Context, ownerRepo string) ([]string, error) {
	owner, repo, err := splitOwnerRepo(ownerRepo)
	if err != nil {
		return nil, err
	}

	opts := &github.ListOptions{PerPage: 100}
	releases, _, err := r.client.Repositories.ListReleases(ctx, owner, repo, opts)
	if err != nil {
		return nil, r.wrapAPIError(err, ownerRepo, "")
	}

	type taggedVersion struct {
		tag string
		ver *semver.Version
	}

	var parsed []taggedVersion
	var unparsed []string
	for _, release := range releases {
		tag := release.GetTagName()
		if tag == "" {
			continue
		}
		if v, err := semver.NewVersion(normalizeVersion(tag)); err == nil {
			parsed = append(parsed, taggedVersion{tag: tag, ver: v})
		} else {
			unparsed = append(unparsed, tag)
		}
	}

	sort.Slice(parsed, func(i, j int) bool {
		return parsed[i].ver.GreaterThan(parsed[j].ver)
	})

	tags := make([]string, 0, len(parsed)+len(unparsed))
	for _, tv := range parsed {
		tags = append(tags, tv.tag)
	}
	tags = append(tags, unparsed...)

	return tags, nil
}

// wrapAPIError converts go-github errors into the resolver's typed errors.
func (r *Resolver) wrapAPIError(err error, ownerRepo, requestedTag string) error {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &ResolverError{
			Type:    ErrTypeRateLimit,
			Repo:    ownerRepo,
			Message: "API rate limit exceeded",
			Err: &RateLimitError{
				Limit:         rateLimitErr.Rate.Limit,
				Remaining:     rateLimitErr.Rate.Remaining,
				ResetTime:     rateLimitErr.Rate.Reset.Time,
				Authenticated: r.authenticated,
				Err:           err,
			},
		}
	}

	if isNotFound(err) {
		msg := "no release found for the latest alias"
		if requestedTag != "" && requestedTag != "latest" {
			msg = fmt.Sprintf("release tag %q not found", requestedTag)
		}
		return &ResolverError{
			Type:    ErrTypeNotFound,
			Repo:    ownerRepo,
			Message: msg,
			Err:     err,
		}
	}

	return &ResolverError{
		Type:    ClassifyError(err),
		Repo:    ownerRepo,
		Message: "failed to query release metadata",
		Err:     err,
	}
}

// isNotFound reports whether err is a GitHub API 404 response.
func isNotFound(err error) bool {
	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

// splitOwnerRepo validates and splits an "owner/repo" slug.
func splitOwnerRepo(ownerRepo string) (string, string, error) {
	parts := strings.Split(ownerRepo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo format: %s (expected owner/repo)", ownerRepo)
	}
	return parts[0], parts[1], nil
}

// normalizeVersion strips the leading "v" from a release tag to produce
// the version used in asset filename templates.
func normalizeVersion(tag string) string {
	return strings.TrimPrefix(tag, "v")
}
