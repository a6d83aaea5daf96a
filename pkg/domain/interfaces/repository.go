package interfaces

import (
	"context"
	"time"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

// CaseRepository persists cases, CI failures and worktree snapshots.
type CaseRepository interface {
	// Case operations
	CreateCase(ctx context.Context, c *model.Case) error
	UpdateCase(ctx context.Context, c *model.Case) error
	GetCase(ctx context.Context, id types.CaseID) (*model.Case, error)
	GetCaseByIssue(ctx context.Context, repoID types.GitHubRepoID, number types.IssueNumber) (*model.Case, error)
	GetOpenCaseByBranch(ctx context.Context, repoID types.GitHubRepoID, branch types.BranchName) (*model.Case, error)
	ListCases(ctx context.Context, repoID types.GitHubRepoID, status types.CaseStatus) ([]*model.Case, error)

	// CI failure operations
	CreateCIFailure(ctx context.Context, failure *model.CIFailure) error
	GetCIFailure(ctx context.Context, kind types.CIKind, runID types.WorkflowRunID) (*model.CIFailure, error)
	ListCIFailures(ctx context.Context, repoID types.GitHubRepoID, since time.Time) ([]*model.CIFailure, error)

	// Worktree snapshot operations
	PutWorktreeSnapshot(ctx context.Context, snapshot *model.WorktreeSnapshot) error
	ListWorktreeSnapshots(ctx context.Context, root string, limit int) ([]*model.WorktreeSnapshot, error)
}
