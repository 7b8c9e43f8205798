// Package providers holds the concrete registry.Runtime implementations
// vx ships with, grounded on the teacher's internal/version.Resolver
// (GitHub releases/tags via google/go-github, npm/PyPI registry JSON,
// and dist-index JSON feeds for node.js and go).
package providers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// newGitHubClient mirrors the teacher's internal/version.Resolver.New:
// an unauthenticated client by default, upgraded to an authenticated
// one when GITHUB_TOKEN is set, which raises the otherwise tight
// unauthenticated rate limit.
func newGitHubClient() *github.Client {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		return github.NewClient(oauth2.NewClient(context.Background(), ts))
	}
	return github.NewClient(nil)
}

// githubReleaseSource fetches a GitHub repo's releases; each runtime
// builds its own download URL from them. Concrete runtimes embed this
// rather than re-implementing release listing each time.
type githubReleaseSource struct {
	client *github.Client
	owner  string
	repo   string
}

func newGitHubReleaseSource(owner, repo string) githubReleaseSource {
	return githubReleaseSource{client: newGitHubClient(), owner: owner, repo: repo}
}

// fetchReleases lists up to 100 releases, newest first, matching the
// page size the teacher's ListGitHubVersions/ListTags calls use.
func (g githubReleaseSource) fetchReleases(ctx context.Context) ([]*github.RepositoryRelease, error) {
	opts := &github.ListOptions{PerPage: 100}
	releases, _, err := g.client.Repositories.ListReleases(ctx, g.owner, g.repo, opts)
	if err != nil {
		if strings.Contains(err.Error(), "network is unreachable") || strings.Contains(err.Error(), "no such host") {
			return nil, fmt.Errorf("network unavailable: %w", err)
		}
		return nil, fmt.Errorf("list releases for %s/%s: %w", g.owner, g.repo, err)
	}
	return releases, nil
}

// findAsset returns the browser_download_url of the first release
// asset whose name matches want.
func findAsset(release *github.RepositoryRelease, want string) (string, bool) {
	for _, a := range release.Assets {
		if a.GetName() == want {
			return a.GetBrowserDownloadURL(), true
		}
	}
	return "", false
}

// trimV strips a leading "v" from a GitHub tag, the normalization the
// teacher's version.normalizeVersion performs for every tag-based feed.
func trimV(tag string) string {
	return strings.TrimPrefix(tag, "v")
}
