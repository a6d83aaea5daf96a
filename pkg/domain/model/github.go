package model

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/types"
)

var ptnValidCommitID = regexp.MustCompile(`^[0-9a-f]{40}$`)

// GitHubRepo identifies a GitHub repository by numeric ID and full name.
type GitHubRepo struct {
	RepoID   int64  `json:"repo_id"`
	Owner    string `json:"owner"`
	RepoName string `json:"repo_name"`
}

func (x *GitHubRepo) Validate() error {
	if x.RepoID == 0 {
		return goerr.Wrap(types.ErrValidationFailed, "repo ID is empty")
	}
	if x.Owner == "" {
		return goerr.Wrap(types.ErrValidationFailed, "owner is empty")
	}
	if x.RepoName == "" {
		return goerr.Wrap(types.ErrValidationFailed, "repo name is empty")
	}
	return nil
}

// ValidateBasic checks only the full name. RepoID may be 0 for
// CLI-initiated records.
func (x *GitHubRepo) ValidateBasic() error {
	if x.Owner == "" {
		return goerr.Wrap(types.ErrValidationFailed, "owner is empty")
	}
	if x.RepoName == "" {
		return goerr.Wrap(types.ErrValidationFailed, "repo name is empty")
	}
	return nil
}

// ID returns the "owner/name" form used as repository key.
func (x *GitHubRepo) ID() types.GitHubRepoID {
	return types.GitHubRepoID(x.Owner + "/" + x.RepoName)
}

type GitHubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

// GitHubCommit represents a commit of a GitHub repository.
type GitHubCommit struct {
	GitHubRepo
	CommitID  string     `json:"commit_id"`
	Branch    string     `json:"branch"`
	Ref       string     `json:"ref"`
	Message   string     `json:"message"`
	Committer GitHubUser `json:"committer"`
}

func (x *GitHubCommit) Validate() error {
	if err := x.GitHubRepo.Validate(); err != nil {
		return err
	}
	if !ptnValidCommitID.MatchString(x.CommitID) {
		return goerr.Wrap(types.ErrValidationFailed, "invalid commit ID", goerr.V("commitID", x.CommitID))
	}
	return nil
}

type GitHubPullRequest struct {
	ID           int64      `json:"id"`
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	BaseBranch   string     `json:"base_branch"`
	BaseCommitID string     `json:"base_commit_id"`
	Merged       bool       `json:"merged"`
	User         GitHubUser `json:"user"`
}

type GitHubIssue struct {
	ID     int64             `json:"id"`
	Number types.IssueNumber `json:"number"`
	Title  string            `json:"title"`
	State  string            `json:"state"`
	URL    string            `json:"url"`
	User   GitHubUser        `json:"user"`
}

// GitHubMetadata bundles the GitHub side of a tracked event.
type GitHubMetadata struct {
	GitHubCommit
	DefaultBranch  string             `json:"default_branch"`
	InstallationID int64              `json:"installation_id"`
	PullRequest    *GitHubPullRequest `json:"pull_request,omitempty"`
	Issue          *GitHubIssue       `json:"issue,omitempty"`
}

// ValidateBasic checks only the fields required for bookkeeping. RepoID
// may be 0 for CLI-initiated records.
func (x *GitHubMetadata) ValidateBasic() error {
	if x.Owner == "" {
		return goerr.Wrap(types.ErrValidationFailed, "owner is empty")
	}
	if x.RepoName == "" {
		return goerr.Wrap(types.ErrValidationFailed, "repo name is empty")
	}
	return nil
}
