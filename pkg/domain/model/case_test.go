package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

func TestCaseClose(t *testing.T) {
	newCase := func() *model.Case {
		return &model.Case{
			ID: types.NewCaseID(),
			Repo: model.GitHubRepo{
				RepoID:   123,
				Owner:    "caselog-dev",
				RepoName: "caselog",
			},
			Title:  "registry lookups time out",
			Status: types.CaseStatusOpen,
		}
	}

	t.Run("close sets summary and timestamps", func(t *testing.T) {
		c := newCase()
		at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

		gt.NoError(t, c.Close("timeout added", at))
		gt.V(t, c.Status).Equal(types.CaseStatusClosed)
		gt.V(t, c.ClosureSummary).Equal("timeout added")
		gt.V(t, c.ClosedAt).Equal(at)
		gt.V(t, c.UpdatedAt).Equal(at)
	})

	t.Run("closing twice fails", func(t *testing.T) {
		c := newCase()
		at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

		gt.NoError(t, c.Close("first", at))
		err := c.Close("second", at.Add(time.Hour))
		gt.Error(t, err)
		gt.True(t, errors.Is(err, types.ErrCaseAlreadyClosed))

		// The first closure summary survives
		gt.V(t, c.ClosureSummary).Equal("first")
	})

	t.Run("review case can be closed", func(t *testing.T) {
		c := newCase()
		c.Status = types.CaseStatusReview

		gt.NoError(t, c.Close("done", time.Now()))
		gt.V(t, c.Status).Equal(types.CaseStatusClosed)
	})
}

func TestCaseRemainingSteps(t *testing.T) {
	c := &model.Case{
		Checklist: []model.ChecklistItem{
			{Text: "reproduce locally", Done: true},
			{Text: "fix the race", Done: false},
			{Text: "add regression test", Done: false},
		},
	}

	rest := c.RemainingSteps()
	gt.A(t, rest).Length(2)
	gt.V(t, rest[0].Text).Equal("fix the race")

	t.Run("empty checklist has no remaining steps", func(t *testing.T) {
		empty := &model.Case{}
		gt.A(t, empty.RemainingSteps()).Length(0)
	})
}

func TestCaseStatusValid(t *testing.T) {
	gt.True(t, types.CaseStatusOpen.Valid())
	gt.True(t, types.CaseStatusReview.Valid())
	gt.True(t, types.CaseStatusClosed.Valid())
	gt.False(t, types.CaseStatus("unknown").Valid())
}

func TestCIConclusionFailed(t *testing.T) {
	gt.True(t, types.CIConclusionFailure.Failed())
	gt.True(t, types.CIConclusionTimedOut.Failed())
	gt.True(t, types.CIConclusionStartupFailure.Failed())
	gt.False(t, types.CIConclusion("success").Failed())
	gt.False(t, types.CIConclusion("cancelled").Failed())
}
