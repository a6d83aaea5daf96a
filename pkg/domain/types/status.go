package types

type CaseStatus string

const (
	CaseStatusOpen   CaseStatus = "open"
	CaseStatusReview CaseStatus = "review"
	CaseStatusClosed CaseStatus = "closed"
)

// Valid reports whether the status is one of the known lifecycle states.
func (x CaseStatus) Valid() bool {
	switch x {
	case CaseStatusOpen, CaseStatusReview, CaseStatusClosed:
		return true
	}
	return false
}

// CIKind distinguishes the GitHub ID space a run ID belongs to.
// workflow_run and check_run IDs can collide across kinds.
type CIKind string

const (
	CIKindWorkflowRun CIKind = "workflow_run"
	CIKindCheckRun    CIKind = "check_run"
)

// Valid reports whether the kind is a known CI event kind.
func (x CIKind) Valid() bool {
	switch x {
	case CIKindWorkflowRun, CIKindCheckRun:
		return true
	}
	return false
}

type CIConclusion string

const (
	CIConclusionFailure        CIConclusion = "failure"
	CIConclusionTimedOut       CIConclusion = "timed_out"
	CIConclusionStartupFailure CIConclusion = "startup_failure"
)

// Failed reports whether the conclusion represents a failed run.
func (x CIConclusion) Failed() bool {
	switch x {
	case CIConclusionFailure, CIConclusionTimedOut, CIConclusionStartupFailure:
		return true
	}
	return false
}
