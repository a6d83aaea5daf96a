package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/repository"
)

type caseData struct {
	c *model.Case
}

type failureData struct {
	failure *model.CIFailure
}

type snapshotData struct {
	snapshot *model.WorktreeSnapshot
}

type caseRepository struct {
	mu        sync.RWMutex
	cases     map[string]*caseData
	failures  map[string]*failureData
	snapshots map[string][]*snapshotData
}

// Case operations

func (r *caseRepository) CreateCase(ctx context.Context, c *model.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[string(c.ID)]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "case already exists",
			goerr.V("caseID", c.ID),
		)
	}

	r.cases[string(c.ID)] = &caseData{c: copyCase(c)}
	return nil
}

func (r *caseRepository) UpdateCase(ctx context.Context, c *model.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cases[string(c.ID)]; !exists {
		return goerr.Wrap(repository.ErrNotFound, "case not found",
			goerr.V("caseID", c.ID),
		)
	}

	r.cases[string(c.ID)] = &caseData{c: copyCase(c)}
	return nil
}

func (r *caseRepository) GetCase(ctx context.Context, id types.CaseID) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.cases[string(id)]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "case not found",
			goerr.V("caseID", id),
		)
	}

	return copyCase(data.c), nil
}

func (r *caseRepository) GetCaseByIssue(ctx context.Context, repoID types.GitHubRepoID, number types.IssueNumber) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, data := range r.cases {
		if data.c.Repo.ID() == repoID && data.c.IssueNumber == number {
			return copyCase(data.c), nil
		}
	}

	return nil, goerr.Wrap(repository.ErrNotFound, "case not found",
		goerr.V("repoID", repoID),
		goerr.V("issueNumber", number),
	)
}

func (r *caseRepository) GetOpenCaseByBranch(ctx context.Context, repoID types.GitHubRepoID, branch types.BranchName) (*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, data := range r.cases {
		if data.c.Repo.ID() == repoID && data.c.Branch == branch && data.c.Status != types.CaseStatusClosed {
			return copyCase(data.c), nil
		}
	}

	return nil, goerr.Wrap(repository.ErrNotFound, "open case not found",
		goerr.V("repoID", repoID),
		goerr.V("branch", branch),
	)
}

func (r *caseRepository) ListCases(ctx context.Context, repoID types.GitHubRepoID, status types.CaseStatus) ([]*model.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cases []*model.Case
	for _, data := range r.cases {
		if repoID != "" && data.c.Repo.ID() != repoID {
			continue
		}
		if status != "" && data.c.Status != status {
			continue
		}
		cases = append(cases, copyCase(data.c))
	}

	sort.Slice(cases, func(i, j int) bool {
		return cases[i].OpenedAt.Before(cases[j].OpenedAt)
	})

	return cases, nil
}

// CI failure operations

func failureKey(kind types.CIKind, runID types.WorkflowRunID) string {
	return fmt.Sprintf("%s:%d", kind, runID)
}

func (r *caseRepository) CreateCIFailure(ctx context.Context, failure *model.CIFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := failureKey(failure.Kind, failure.RunID)
	if _, exists := r.failures[key]; exists {
		return goerr.Wrap(repository.ErrAlreadyExists, "CI failure already recorded",
			goerr.V("kind", failure.Kind),
			goerr.V("runID", failure.RunID),
		)
	}

	r.failures[key] = &failureData{failure: copyFailure(failure)}
	return nil
}

func (r *caseRepository) GetCIFailure(ctx context.Context, kind types.CIKind, runID types.WorkflowRunID) (*model.CIFailure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, exists := r.failures[failureKey(kind, runID)]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "CI failure not found",
			goerr.V("kind", kind),
			goerr.V("runID", runID),
		)
	}

	return copyFailure(data.failure), nil
}

func (r *caseRepository) ListCIFailures(ctx context.Context, repoID types.GitHubRepoID, since time.Time) ([]*model.CIFailure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var failures []*model.CIFailure
	for _, data := range r.failures {
		if repoID != "" && data.failure.Repo.ID() != repoID {
			continue
		}
		if data.failure.OccurredAt.Before(since) {
			continue
		}
		failures = append(failures, copyFailure(data.failure))
	}

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].OccurredAt.Before(failures[j].OccurredAt)
	})

	return failures, nil
}

// Worktree snapshot operations

func (r *caseRepository) PutWorktreeSnapshot(ctx context.Context, snapshot *model.WorktreeSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[snapshot.Root] = append(r.snapshots[snapshot.Root], &snapshotData{
		snapshot: copySnapshot(snapshot),
	})
	return nil
}

func (r *caseRepository) ListWorktreeSnapshots(ctx context.Context, root string, limit int) ([]*model.WorktreeSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data := r.snapshots[root]

	var snapshots []*model.WorktreeSnapshot
	for _, d := range data {
		snapshots = append(snapshots, copySnapshot(d.snapshot))
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].TakenAt.After(snapshots[j].TakenAt)
	})

	if limit > 0 && len(snapshots) > limit {
		snapshots = snapshots[:limit]
	}

	return snapshots, nil
}

// Deep copy helpers. The repository never shares pointers with callers.

func copyCase(c *model.Case) *model.Case {
	copied := *c
	copied.Commits = append([]model.GitHubCommit(nil), c.Commits...)
	copied.Checklist = append([]model.ChecklistItem(nil), c.Checklist...)
	if c.PullRequest != nil {
		pr := *c.PullRequest
		copied.PullRequest = &pr
	}
	return &copied
}

func copyFailure(f *model.CIFailure) *model.CIFailure {
	copied := *f
	return &copied
}

func copySnapshot(s *model.WorktreeSnapshot) *model.WorktreeSnapshot {
	copied := *s
	copied.Worktrees = append([]model.Worktree(nil), s.Worktrees...)
	return &copied
}
