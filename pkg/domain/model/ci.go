package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/types"
)

// CIFailure is one failed CI run observed via webhook.
type CIFailure struct {
	RunID        types.WorkflowRunID
	Kind         types.CIKind
	Repo         GitHubRepo
	WorkflowName string
	Branch       types.BranchName
	CommitSHA    types.CommitSHA
	Conclusion   types.CIConclusion
	URL          string
	HeadMessage  string
	CaseID       types.CaseID
	OccurredAt   time.Time
}

func (x *CIFailure) Validate() error {
	if x.RunID == 0 {
		return goerr.Wrap(types.ErrValidationFailed, "run ID is empty")
	}
	if !x.Kind.Valid() {
		return goerr.Wrap(types.ErrValidationFailed, "unknown CI kind", goerr.V("kind", x.Kind))
	}
	if err := x.Repo.Validate(); err != nil {
		return err
	}
	if !x.Conclusion.Failed() {
		return goerr.Wrap(types.ErrValidationFailed, "conclusion is not a failure",
			goerr.V("conclusion", x.Conclusion),
		)
	}
	return nil
}
