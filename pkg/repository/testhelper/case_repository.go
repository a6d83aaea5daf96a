package testhelper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/repository"
)

// TestAll runs all test cases for CaseRepository.
// This is the main entry point for testing any CaseRepository implementation.
func TestAll(t *testing.T, repo interfaces.CaseRepository) {
	t.Run("CaseCRUD", func(t *testing.T) {
		TestCaseCRUD(t, repo)
	})
	t.Run("CaseLookups", func(t *testing.T) {
		TestCaseLookups(t, repo)
	})
	t.Run("CIFailures", func(t *testing.T) {
		TestCIFailures(t, repo)
	})
	t.Run("WorktreeSnapshots", func(t *testing.T) {
		TestWorktreeSnapshots(t, repo)
	})
}

func newTestRepo() model.GitHubRepo {
	return model.GitHubRepo{
		RepoID:   12345,
		Owner:    fmt.Sprintf("owner-%s", uuid.NewString()[:8]),
		RepoName: fmt.Sprintf("repo-%s", uuid.NewString()[:8]),
	}
}

// TestCaseCRUD tests basic create/get/update for Case.
func TestCaseCRUD(t *testing.T, repo interfaces.CaseRepository) {
	ctx := context.Background()

	ghRepo := newTestRepo()
	now := time.Now().UTC().Truncate(time.Microsecond)

	c := &model.Case{
		ID:          types.NewCaseID(),
		Repo:        ghRepo,
		Title:       "fix flaky scheduler test",
		IssueNumber: 42,
		Status:      types.CaseStatusOpen,
		Branch:      "fix/flaky-scheduler",
		OpenedAt:    now,
		UpdatedAt:   now,
	}

	gt.NoError(t, repo.CreateCase(ctx, c))

	t.Run("create duplicate fails", func(t *testing.T) {
		err := repo.CreateCase(ctx, c)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrAlreadyExists))
	})

	t.Run("get returns stored case", func(t *testing.T) {
		got := gt.R1(repo.GetCase(ctx, c.ID)).NoError(t)
		gt.V(t, got.Title).Equal(c.Title)
		gt.V(t, got.IssueNumber).Equal(c.IssueNumber)
		gt.V(t, got.Status).Equal(types.CaseStatusOpen)
	})

	t.Run("get unknown ID fails with ErrNotFound", func(t *testing.T) {
		_, err := repo.GetCase(ctx, types.NewCaseID())
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("update persists commits and checklist", func(t *testing.T) {
		c.Commits = append(c.Commits, model.GitHubCommit{
			GitHubRepo: ghRepo,
			CommitID:   "0123456789abcdef0123456789abcdef01234567",
			Branch:     "fix/flaky-scheduler",
			Message:    "retry scheduler setup",
		})
		c.Checklist = []model.ChecklistItem{
			{Text: "backport to release branch", Done: false},
			{Text: "update changelog", Done: true},
		}
		gt.NoError(t, repo.UpdateCase(ctx, c))

		got := gt.R1(repo.GetCase(ctx, c.ID)).NoError(t)
		gt.A(t, got.Commits).Length(1)
		gt.A(t, got.Checklist).Length(2)
	})

	t.Run("update unknown case fails", func(t *testing.T) {
		unknown := &model.Case{
			ID:     types.NewCaseID(),
			Repo:   ghRepo,
			Title:  "nope",
			Status: types.CaseStatusOpen,
		}
		err := repo.UpdateCase(ctx, unknown)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})
}

// TestCaseLookups tests issue/branch based lookups and listing.
func TestCaseLookups(t *testing.T, repo interfaces.CaseRepository) {
	ctx := context.Background()

	ghRepo := newTestRepo()
	now := time.Now().UTC().Truncate(time.Microsecond)

	open := &model.Case{
		ID:          types.NewCaseID(),
		Repo:        ghRepo,
		Title:       "router returns 500 on empty payload",
		IssueNumber: 7,
		Status:      types.CaseStatusOpen,
		Branch:      "fix/empty-payload",
		OpenedAt:    now,
		UpdatedAt:   now,
	}
	closed := &model.Case{
		ID:          types.NewCaseID(),
		Repo:        ghRepo,
		Title:       "drop legacy config keys",
		IssueNumber: 9,
		Status:      types.CaseStatusClosed,
		Branch:      "chore/drop-legacy",
		OpenedAt:    now.Add(-time.Hour),
		ClosedAt:    now,
		UpdatedAt:   now,
	}

	gt.NoError(t, repo.CreateCase(ctx, open))
	gt.NoError(t, repo.CreateCase(ctx, closed))

	t.Run("lookup by issue number", func(t *testing.T) {
		got := gt.R1(repo.GetCaseByIssue(ctx, ghRepo.ID(), 7)).NoError(t)
		gt.V(t, got.ID).Equal(open.ID)
	})

	t.Run("lookup by unknown issue fails", func(t *testing.T) {
		_, err := repo.GetCaseByIssue(ctx, ghRepo.ID(), 999)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("open case by branch skips closed cases", func(t *testing.T) {
		got := gt.R1(repo.GetOpenCaseByBranch(ctx, ghRepo.ID(), "fix/empty-payload")).NoError(t)
		gt.V(t, got.ID).Equal(open.ID)

		_, err := repo.GetOpenCaseByBranch(ctx, ghRepo.ID(), "chore/drop-legacy")
		gt.Error(t, err)
	})

	t.Run("list filters by status", func(t *testing.T) {
		cases := gt.R1(repo.ListCases(ctx, ghRepo.ID(), types.CaseStatusClosed)).NoError(t)
		gt.A(t, cases).Length(1)
		gt.V(t, cases[0].ID).Equal(closed.ID)

		all := gt.R1(repo.ListCases(ctx, ghRepo.ID(), "")).NoError(t)
		gt.A(t, all).Length(2)
	})
}

// TestCIFailures tests CI failure persistence and kind/run ID uniqueness.
func TestCIFailures(t *testing.T, repo interfaces.CaseRepository) {
	ctx := context.Background()

	ghRepo := newTestRepo()
	now := time.Now().UTC().Truncate(time.Microsecond)
	runID := types.WorkflowRunID(time.Now().UnixNano())

	failure := &model.CIFailure{
		RunID:        runID,
		Kind:         types.CIKindWorkflowRun,
		Repo:         ghRepo,
		WorkflowName: "test",
		Branch:       "main",
		CommitSHA:    "0123456789abcdef0123456789abcdef01234567",
		Conclusion:   types.CIConclusionFailure,
		URL:          "https://github.com/example/run/1",
		HeadMessage:  "bump deps",
		OccurredAt:   now,
	}

	gt.NoError(t, repo.CreateCIFailure(ctx, failure))

	t.Run("duplicate kind and run ID fails", func(t *testing.T) {
		err := repo.CreateCIFailure(ctx, failure)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrAlreadyExists))
	})

	t.Run("same run ID of another kind is distinct", func(t *testing.T) {
		checkRun := *failure
		checkRun.Kind = types.CIKindCheckRun
		checkRun.WorkflowName = "lint"
		gt.NoError(t, repo.CreateCIFailure(ctx, &checkRun))

		got := gt.R1(repo.GetCIFailure(ctx, types.CIKindCheckRun, runID)).NoError(t)
		gt.V(t, got.WorkflowName).Equal("lint")
	})

	t.Run("get by kind and run ID", func(t *testing.T) {
		got := gt.R1(repo.GetCIFailure(ctx, types.CIKindWorkflowRun, runID)).NoError(t)
		gt.V(t, got.WorkflowName).Equal("test")
		gt.V(t, got.Conclusion).Equal(types.CIConclusionFailure)
	})

	t.Run("get unknown kind fails with ErrNotFound", func(t *testing.T) {
		_, err := repo.GetCIFailure(ctx, types.CIKindCheckRun, runID+1)
		gt.Error(t, err)
		gt.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("list since filters old entries", func(t *testing.T) {
		failures := gt.R1(repo.ListCIFailures(ctx, ghRepo.ID(), now.Add(-time.Minute))).NoError(t)
		gt.A(t, failures).Length(2)

		empty := gt.R1(repo.ListCIFailures(ctx, ghRepo.ID(), now.Add(time.Minute))).NoError(t)
		gt.A(t, empty).Length(0)
	})
}

// TestWorktreeSnapshots tests snapshot storage and ordering.
func TestWorktreeSnapshots(t *testing.T, repo interfaces.CaseRepository) {
	ctx := context.Background()

	root := fmt.Sprintf("/srv/work/%s", uuid.NewString()[:8])
	base := time.Now().UTC().Truncate(time.Microsecond)

	for i := 0; i < 3; i++ {
		snapshot := &model.WorktreeSnapshot{
			ID:      types.NewSnapshotID(),
			Root:    root,
			TakenAt: base.Add(time.Duration(i) * time.Minute),
			Worktrees: []model.Worktree{
				{Path: root + "/main", Branch: "main", Head: "0123456789abcdef0123456789abcdef01234567"},
				{Path: root + "/wip", Branch: "wip", Dirty: true},
			},
		}
		gt.NoError(t, repo.PutWorktreeSnapshot(ctx, snapshot))
	}

	t.Run("list returns newest first", func(t *testing.T) {
		snapshots := gt.R1(repo.ListWorktreeSnapshots(ctx, root, 0)).NoError(t)
		gt.A(t, snapshots).Length(3)
		gt.True(t, snapshots[0].TakenAt.After(snapshots[2].TakenAt))
	})

	t.Run("limit truncates", func(t *testing.T) {
		snapshots := gt.R1(repo.ListWorktreeSnapshots(ctx, root, 2)).NoError(t)
		gt.A(t, snapshots).Length(2)
	})

	t.Run("unknown root is empty", func(t *testing.T) {
		snapshots := gt.R1(repo.ListWorktreeSnapshots(ctx, "/no/such/root", 0)).NoError(t)
		gt.A(t, snapshots).Length(0)
	})
}
