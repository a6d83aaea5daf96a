package types

import "github.com/google/uuid"

type (
	CaseID     string
	RequestID  string
	SnapshotID string
	BQTableID  string

	GoogleProjectID string
	BQDatasetID     string
)

func NewCaseID() CaseID {
	return CaseID(uuid.NewString())
}

func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.NewString())
}

func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

func (x CaseID) String() string     { return string(x) }
func (x SnapshotID) String() string { return string(x) }
func (x RequestID) String() string  { return string(x) }

func (x GoogleProjectID) String() string { return string(x) }
func (x BQDatasetID) String() string     { return string(x) }
func (x BQTableID) String() string       { return string(x) }
