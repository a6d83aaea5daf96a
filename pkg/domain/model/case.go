package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/types"
)

// Case is one unit of tracked work: a GitHub issue being worked on,
// its pull request, the commits pushed for it and the remaining
// next-steps checklist.
type Case struct {
	ID          types.CaseID
	Repo        GitHubRepo
	Title       string
	IssueNumber types.IssueNumber
	PullRequest *GitHubPullRequest
	Status      types.CaseStatus
	Branch      types.BranchName
	Commits     []GitHubCommit
	Checklist   []ChecklistItem

	ClosureSummary string
	OpenedAt       time.Time
	ClosedAt       time.Time
	UpdatedAt      time.Time
}

func (x *Case) Validate() error {
	if x.ID == "" {
		return goerr.Wrap(types.ErrValidationFailed, "case ID is empty")
	}
	if err := x.Repo.Validate(); err != nil {
		return err
	}
	if !x.Status.Valid() {
		return goerr.Wrap(types.ErrValidationFailed, "invalid case status", goerr.V("status", x.Status))
	}
	return nil
}

// Close transitions the case to closed. Closing an already closed case
// is an error so that duplicate webhook deliveries do not rewrite the
// closure summary.
func (x *Case) Close(summary string, at time.Time) error {
	if x.Status == types.CaseStatusClosed {
		return goerr.Wrap(types.ErrCaseAlreadyClosed, "case", goerr.V("caseID", x.ID))
	}
	x.Status = types.CaseStatusClosed
	x.ClosureSummary = summary
	x.ClosedAt = at
	x.UpdatedAt = at
	return nil
}

// RemainingSteps returns checklist items not yet done.
func (x *Case) RemainingSteps() []ChecklistItem {
	var rest []ChecklistItem
	for _, item := range x.Checklist {
		if !item.Done {
			rest = append(rest, item)
		}
	}
	return rest
}

// ChecklistItem is a single next-steps entry parsed from a markdown
// task list.
type ChecklistItem struct {
	Text string
	Done bool
}
