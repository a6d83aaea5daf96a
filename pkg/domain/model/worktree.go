package model

import (
	"time"

	"github.com/caselog-dev/caselog/pkg/domain/types"
)

// Worktree is one entry of `git worktree list --porcelain`, annotated
// with the monitoring checks.
type Worktree struct {
	Path   string
	Branch types.BranchName
	Head   types.CommitSHA
	Bare   bool

	// Dirty means `git status --porcelain` reported uncommitted changes.
	Dirty bool
	// Missing means the worktree directory no longer exists and the
	// entry is a prune candidate.
	Missing bool
}

// WorktreeSnapshot is the state of all worktrees under one repository
// root at a point in time.
type WorktreeSnapshot struct {
	ID        types.SnapshotID
	Root      string
	Worktrees []Worktree
	TakenAt   time.Time
}

// Attention returns the worktrees that need operator action.
func (x *WorktreeSnapshot) Attention() []Worktree {
	var out []Worktree
	for _, wt := range x.Worktrees {
		if wt.Dirty || wt.Missing {
			out = append(out, wt)
		}
	}
	return out
}
