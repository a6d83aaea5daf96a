package report_test

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/report"
)

func testCase() *model.Case {
	opened := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	closed := time.Date(2026, 8, 3, 18, 30, 0, 0, time.UTC)

	return &model.Case{
		ID: "b2a3d1f0-1111-2222-3333-444455556666",
		Repo: model.GitHubRepo{
			RepoID:   100,
			Owner:    "caselog-dev",
			RepoName: "caselog",
		},
		Title:       "webhook handler drops check_run events",
		IssueNumber: 17,
		PullRequest: &model.GitHubPullRequest{
			Number: 21,
			Merged: true,
		},
		Status: types.CaseStatusClosed,
		Branch: "fix/check-run-events",
		Commits: []model.GitHubCommit{
			{
				GitHubRepo: model.GitHubRepo{RepoID: 100, Owner: "caselog-dev", RepoName: "caselog"},
				CommitID:   "0123456789abcdef0123456789abcdef01234567",
				Message:    "handle check_run conclusion",
			},
		},
		Checklist: []model.ChecklistItem{
			{Text: "verify redelivery dedup", Done: true},
			{Text: "add alerting for repeated failures", Done: false},
		},
		ClosureSummary: "Handler now maps check_run failures to CI records.",
		OpenedAt:       opened,
		ClosedAt:       closed,
		UpdatedAt:      closed,
	}
}

func TestCaseClosure(t *testing.T) {
	doc := gt.R1(report.CaseClosure(testCase())).NoError(t)

	gt.S(t, doc).Contains("# Case closed: webhook handler drops check_run events")
	gt.S(t, doc).Contains("`caselog-dev/caselog`")
	gt.S(t, doc).Contains("Issue: #17")
	gt.S(t, doc).Contains("Pull request: #21 (merged)")
	gt.S(t, doc).Contains("`0123456789ab` handle check_run conclusion")
	gt.S(t, doc).Contains("Handler now maps check_run failures to CI records.")

	t.Run("remaining steps only lists open items", func(t *testing.T) {
		gt.S(t, doc).Contains("[ ] add alerting for repeated failures")
		gt.S(t, doc).NotContains("verify redelivery dedup")
	})
}

func TestCaseClosureMinimal(t *testing.T) {
	c := testCase()
	c.IssueNumber = 0
	c.PullRequest = nil
	c.Commits = nil
	c.Checklist = nil
	c.ClosureSummary = ""

	doc := gt.R1(report.CaseClosure(c)).NoError(t)
	gt.S(t, doc).NotContains("Issue:")
	gt.S(t, doc).NotContains("Pull request:")
	gt.S(t, doc).NotContains("## Commits")
	gt.S(t, doc).NotContains("## Remaining steps")
}

func TestIssueClosure(t *testing.T) {
	c := testCase()
	issue := &model.GitHubIssue{
		Number: 17,
		Title:  "webhook handler drops check_run events",
		URL:    "https://github.com/caselog-dev/caselog/issues/17",
	}

	doc := gt.R1(report.IssueClosure(c, issue)).NoError(t)
	gt.S(t, doc).Contains("# Issue closed: webhook handler drops check_run events")
	gt.S(t, doc).Contains("#17")
	gt.S(t, doc).Contains("https://github.com/caselog-dev/caselog/issues/17")
}

func TestCIFailure(t *testing.T) {
	failure := &model.CIFailure{
		RunID:        987654,
		Repo:         model.GitHubRepo{RepoID: 100, Owner: "caselog-dev", RepoName: "caselog"},
		WorkflowName: "unit-test",
		Branch:       "main",
		CommitSHA:    "fedcba9876543210fedcba9876543210fedcba98",
		Conclusion:   types.CIConclusionFailure,
		URL:          "https://github.com/caselog-dev/caselog/actions/runs/987654",
		HeadMessage:  "refactor repository layer",
		OccurredAt:   time.Date(2026, 8, 2, 9, 15, 0, 0, time.UTC),
	}

	doc := gt.R1(report.CIFailure(failure)).NoError(t)
	gt.S(t, doc).Contains("# CI failure: unit-test")
	gt.S(t, doc).Contains("Run: 987654")
	gt.S(t, doc).Contains("`fedcba987654`")
	gt.S(t, doc).Contains("Conclusion: failure")
}

func TestWorktreeNote(t *testing.T) {
	snapshot := &model.WorktreeSnapshot{
		ID:      "11112222-3333-4444-5555-666677778888",
		Root:    "/srv/work/caselog",
		TakenAt: time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC),
		Worktrees: []model.Worktree{
			{Path: "/srv/work/caselog/main", Branch: "main", Head: "0123456789abcdef0123456789abcdef01234567"},
			{Path: "/srv/work/caselog/wip", Branch: "wip", Dirty: true},
			{Path: "/srv/work/caselog/gone", Branch: "old", Missing: true},
		},
	}

	doc := gt.R1(report.WorktreeNote(snapshot)).NoError(t)
	gt.S(t, doc).Contains("# Worktree status: /srv/work/caselog")
	gt.S(t, doc).Contains("| `/srv/work/caselog/main` | `main` |")
	gt.S(t, doc).Contains("## Needs attention")
	gt.S(t, doc).Contains("uncommitted changes")
	gt.S(t, doc).Contains("prune candidate")

	t.Run("clean worktree is not flagged", func(t *testing.T) {
		gt.V(t, strings.Count(doc, "- `/srv/work/caselog/")).Equal(2)
	})
}

func TestNextSteps(t *testing.T) {
	doc := gt.R1(report.NextSteps(testCase())).NoError(t)
	gt.S(t, doc).Contains("[x] verify redelivery dedup")
	gt.S(t, doc).Contains("[ ] add alerting for repeated failures")

	t.Run("empty checklist", func(t *testing.T) {
		c := testCase()
		c.Checklist = nil
		doc := gt.R1(report.NextSteps(c)).NoError(t)
		gt.S(t, doc).Contains("No remaining steps.")
	})
}
