package model

import (
	"time"

	"github.com/caselog-dev/caselog/pkg/domain/types"
)

// ClosureRecord is the exported form of a closed case.
type ClosureRecord struct {
	CaseID      types.CaseID     `bigquery:"case_id" json:"case_id"`
	Timestamp   time.Time        `bigquery:"timestamp" json:"timestamp"`
	Repo        string           `bigquery:"repo" json:"repo"`
	Title       string           `bigquery:"title" json:"title"`
	IssueNumber int              `bigquery:"issue_number" json:"issue_number"`
	Summary     string           `bigquery:"summary" json:"summary"`
	Commits     int              `bigquery:"commits" json:"commits"`
	OpenSteps   int              `bigquery:"open_steps" json:"open_steps"`
	Status      types.CaseStatus `bigquery:"status" json:"status"`
}

// ClosureRawRecord flattens the timestamp for table append.
type ClosureRawRecord struct {
	ClosureRecord
	Timestamp int64 `bigquery:"timestamp" json:"timestamp"`
}
