package interfaces

import (
	"context"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

type UseCase interface {
	OpenCase(ctx context.Context, input *model.OpenCaseInput) (*model.Case, error)
	CloseCase(ctx context.Context, input *model.CloseCaseInput) (*model.Case, error)
	AttachCommit(ctx context.Context, commit *model.GitHubCommit) error
	RecordIssueClosure(ctx context.Context, input *model.RecordIssueClosureInput) error
	RecordCIFailure(ctx context.Context, input *model.RecordCIFailureInput) error
	IngestNote(ctx context.Context, input *model.IngestNoteInput) ([]model.ChecklistItem, error)
	MonitorWorktrees(ctx context.Context, roots []string) ([]*model.WorktreeSnapshot, error)
	RenderCase(ctx context.Context, id types.CaseID) (string, error)
}
