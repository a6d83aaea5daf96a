package types

import "log/slog"

type (
	GitHubAppID         int64
	GitHubAppInstallID  int64
	GitHubAppSecret     string
	GitHubAppPrivateKey string
	GitHubRepoID        string
	BranchName          string
	CommitSHA           string
	IssueNumber         int
	WorkflowRunID       int64
)

func (x GitHubAppSecret) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x GitHubAppSecret) String() string {
	return "***********"
}

func (x GitHubAppPrivateKey) LogValue() slog.Value {
	return slog.StringValue("***********")
}

func (x GitHubAppPrivateKey) String() string {
	return "***********"
}
