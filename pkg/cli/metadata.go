package cli

import (
	"context"
	"strings"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/go-git/go-git/v5"
	"github.com/m-mizutani/goerr/v2"
)

// AutoDetectGitMetadata auto-detects GitHub metadata from git repository if not already set
func AutoDetectGitMetadata(ctx context.Context, meta *model.GitHubMetadata) error {
	repo, err := git.PlainOpen(".")
	if err != nil {
		return goerr.Wrap(err, "failed to open git repository")
	}

	if meta.CommitID == "" || meta.Branch == "" {
		head, err := repo.Head()
		if err != nil {
			return goerr.Wrap(err, "failed to get HEAD")
		}

		if meta.CommitID == "" {
			meta.CommitID = head.Hash().String()
		}

		if meta.Branch == "" && head.Name().IsBranch() {
			meta.Branch = head.Name().Short()
		}
	}

	if meta.Owner == "" || meta.RepoName == "" {
		remote, err := repo.Remote("origin")
		if err != nil {
			return goerr.Wrap(err, "failed to get remote origin")
		}

		if len(remote.Config().URLs) == 0 {
			return goerr.New("no remote URL found")
		}

		url := remote.Config().URLs[0]
		owner, repoName := parseGitHubRemote(url)
		if owner == "" || repoName == "" {
			return goerr.New("failed to parse remote URL", goerr.V("url", url))
		}

		if meta.Owner == "" {
			meta.Owner = owner
		}
		if meta.RepoName == "" {
			meta.RepoName = repoName
		}
	}

	return nil
}

// parseGitHubRemote splits a GitHub remote URL into owner and repo.
// Both SSH (git@github.com:owner/repo.git) and HTTPS
// (https://github.com/owner/repo.git) forms are supported.
func parseGitHubRemote(url string) (string, string) {
	var path string

	switch {
	case strings.HasPrefix(url, "git@github.com:"):
		path = strings.TrimPrefix(url, "git@github.com:")
	case strings.Contains(url, "github.com/"):
		parts := strings.SplitN(url, "github.com/", 2)
		path = parts[1]
	default:
		return "", ""
	}

	path = strings.TrimSuffix(path, ".git")
	ownerRepo := strings.Split(path, "/")
	if len(ownerRepo) != 2 {
		return "", ""
	}

	return ownerRepo[0], ownerRepo[1]
}

// ParseGitHubRemoteForTest is exported for testing purposes
func ParseGitHubRemoteForTest(url string) (string, string) {
	return parseGitHubRemote(url)
}
