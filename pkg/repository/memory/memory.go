package memory

import (
	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
)

// New creates a new in-memory repository
func New() interfaces.CaseRepository {
	return &caseRepository{
		cases:     make(map[string]*caseData),
		failures:  make(map[string]*failureData),
		snapshots: make(map[string][]*snapshotData),
	}
}
