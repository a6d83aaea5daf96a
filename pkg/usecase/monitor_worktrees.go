package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/report"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
)

// MonitorWorktrees inspects the git worktrees under each root and
// persists one snapshot per root. The rendered monitoring note is
// logged; callers can render snapshots again for output.
func (x *UseCase) MonitorWorktrees(ctx context.Context, roots []string) ([]*model.WorktreeSnapshot, error) {
	if len(roots) == 0 {
		return nil, goerr.Wrap(types.ErrInvalidOption, "no worktree roots given")
	}

	var snapshots []*model.WorktreeSnapshot
	for _, root := range roots {
		snapshot, err := x.snapshotRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

func (x *UseCase) snapshotRoot(ctx context.Context, root string) (*model.WorktreeSnapshot, error) {
	worktrees, err := x.clients.Git().ListWorktrees(ctx, root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list worktrees", goerr.V("root", root))
	}

	for i := range worktrees {
		wt := &worktrees[i]
		if wt.Missing || wt.Bare {
			continue
		}
		dirty, err := x.clients.Git().IsDirty(ctx, wt.Path)
		if err != nil {
			// A worktree can disappear between list and status
			logging.From(ctx).Warn("failed to check worktree status",
				slog.String("path", wt.Path),
				slog.Any("error", err),
			)
			wt.Missing = true
			continue
		}
		wt.Dirty = dirty
	}

	snapshot := &model.WorktreeSnapshot{
		ID:        types.NewSnapshotID(),
		Root:      root,
		Worktrees: worktrees,
		TakenAt:   logging.CtxTime(ctx),
	}

	if repo := x.clients.CaseRepository(); repo != nil {
		if err := repo.PutWorktreeSnapshot(ctx, snapshot); err != nil {
			return nil, goerr.Wrap(err, "failed to store worktree snapshot", goerr.V("root", root))
		}
	}

	doc, err := report.WorktreeNote(snapshot)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("took worktree snapshot",
		slog.String("root", root),
		slog.Int("worktrees", len(snapshot.Worktrees)),
		slog.Int("attention", len(snapshot.Attention())),
	)
	logging.From(ctx).Debug("worktree monitoring note", slog.String("note", doc))

	return snapshot, nil
}
