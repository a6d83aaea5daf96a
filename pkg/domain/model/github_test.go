package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

func TestGitHubRepoValidate(t *testing.T) {
	t.Run("valid repo passes validation", func(t *testing.T) {
		repo := &model.GitHubRepo{
			RepoID:   123,
			Owner:    "test-owner",
			RepoName: "test-repo",
		}
		gt.NoError(t, repo.Validate())
	})

	t.Run("missing repo ID fails validation", func(t *testing.T) {
		repo := &model.GitHubRepo{
			Owner:    "test-owner",
			RepoName: "test-repo",
		}
		gt.Error(t, repo.Validate())
	})

	t.Run("missing owner fails validation", func(t *testing.T) {
		repo := &model.GitHubRepo{
			RepoID:   123,
			RepoName: "test-repo",
		}
		gt.Error(t, repo.Validate())
	})

	t.Run("missing repo name fails validation", func(t *testing.T) {
		repo := &model.GitHubRepo{
			RepoID: 123,
			Owner:  "test-owner",
		}
		gt.Error(t, repo.Validate())
	})
}

func TestGitHubRepoID(t *testing.T) {
	repo := &model.GitHubRepo{
		RepoID:   123,
		Owner:    "caselog-dev",
		RepoName: "caselog",
	}
	gt.V(t, repo.ID()).Equal(types.GitHubRepoID("caselog-dev/caselog"))
}

func TestGitHubCommitValidate(t *testing.T) {
	validCommitID := "a" + "1234567890123456789012345678901234567890"[:39]

	t.Run("valid commit passes validation", func(t *testing.T) {
		commit := &model.GitHubCommit{
			GitHubRepo: model.GitHubRepo{
				RepoID:   123,
				Owner:    "test-owner",
				RepoName: "test-repo",
			},
			CommitID: validCommitID,
		}
		gt.NoError(t, commit.Validate())
	})

	t.Run("invalid commit hash format fails validation", func(t *testing.T) {
		commit := &model.GitHubCommit{
			GitHubRepo: model.GitHubRepo{
				RepoID:   123,
				Owner:    "test-owner",
				RepoName: "test-repo",
			},
			CommitID: "invalid-commit-id",
		}
		gt.Error(t, commit.Validate())
	})

	t.Run("short commit hash fails validation", func(t *testing.T) {
		commit := &model.GitHubCommit{
			GitHubRepo: model.GitHubRepo{
				RepoID:   123,
				Owner:    "test-owner",
				RepoName: "test-repo",
			},
			CommitID: "abc123",
		}
		gt.Error(t, commit.Validate())
	})

	t.Run("uppercase commit hash fails validation", func(t *testing.T) {
		commit := &model.GitHubCommit{
			GitHubRepo: model.GitHubRepo{
				RepoID:   123,
				Owner:    "test-owner",
				RepoName: "test-repo",
			},
			CommitID: "A234567890123456789012345678901234567890",
		}
		gt.Error(t, commit.Validate())
	})

	t.Run("commit with invalid repo fails validation", func(t *testing.T) {
		commit := &model.GitHubCommit{
			GitHubRepo: model.GitHubRepo{
				RepoID: 0, // Invalid
				Owner:  "test-owner",
			},
			CommitID: validCommitID,
		}
		gt.Error(t, commit.Validate())
	})
}

func TestGitHubMetadataValidateBasic(t *testing.T) {
	t.Run("all required fields present", func(t *testing.T) {
		meta := &model.GitHubMetadata{
			GitHubCommit: model.GitHubCommit{
				GitHubRepo: model.GitHubRepo{
					Owner:    "caselog-dev",
					RepoName: "caselog",
				},
			},
		}
		gt.NoError(t, meta.ValidateBasic())
	})

	t.Run("repo ID may be zero", func(t *testing.T) {
		meta := &model.GitHubMetadata{
			GitHubCommit: model.GitHubCommit{
				GitHubRepo: model.GitHubRepo{
					RepoID:   0,
					Owner:    "caselog-dev",
					RepoName: "caselog",
				},
			},
		}
		gt.NoError(t, meta.ValidateBasic())
	})

	t.Run("owner missing", func(t *testing.T) {
		meta := &model.GitHubMetadata{
			GitHubCommit: model.GitHubCommit{
				GitHubRepo: model.GitHubRepo{
					Owner:    "",
					RepoName: "caselog",
				},
			},
		}
		gt.Error(t, meta.ValidateBasic())
	})

	t.Run("repo missing", func(t *testing.T) {
		meta := &model.GitHubMetadata{
			GitHubCommit: model.GitHubCommit{
				GitHubRepo: model.GitHubRepo{
					Owner:    "caselog-dev",
					RepoName: "",
				},
			},
		}
		gt.Error(t, meta.ValidateBasic())
	})
}
