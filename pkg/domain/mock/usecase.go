package mock

import (
	"context"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

// UseCaseMock implements interfaces.UseCase for tests.
type UseCaseMock struct {
	OpenCaseFunc           func(ctx context.Context, input *model.OpenCaseInput) (*model.Case, error)
	CloseCaseFunc          func(ctx context.Context, input *model.CloseCaseInput) (*model.Case, error)
	AttachCommitFunc       func(ctx context.Context, commit *model.GitHubCommit) error
	RecordIssueClosureFunc func(ctx context.Context, input *model.RecordIssueClosureInput) error
	RecordCIFailureFunc    func(ctx context.Context, input *model.RecordCIFailureInput) error
	IngestNoteFunc         func(ctx context.Context, input *model.IngestNoteInput) ([]model.ChecklistItem, error)
	MonitorWorktreesFunc   func(ctx context.Context, roots []string) ([]*model.WorktreeSnapshot, error)
	RenderCaseFunc         func(ctx context.Context, id types.CaseID) (string, error)
}

var _ interfaces.UseCase = (*UseCaseMock)(nil)

func (x *UseCaseMock) OpenCase(ctx context.Context, input *model.OpenCaseInput) (*model.Case, error) {
	if x.OpenCaseFunc == nil {
		return nil, nil
	}
	return x.OpenCaseFunc(ctx, input)
}

func (x *UseCaseMock) CloseCase(ctx context.Context, input *model.CloseCaseInput) (*model.Case, error) {
	if x.CloseCaseFunc == nil {
		return nil, nil
	}
	return x.CloseCaseFunc(ctx, input)
}

func (x *UseCaseMock) AttachCommit(ctx context.Context, commit *model.GitHubCommit) error {
	if x.AttachCommitFunc == nil {
		return nil
	}
	return x.AttachCommitFunc(ctx, commit)
}

func (x *UseCaseMock) RecordIssueClosure(ctx context.Context, input *model.RecordIssueClosureInput) error {
	if x.RecordIssueClosureFunc == nil {
		return nil
	}
	return x.RecordIssueClosureFunc(ctx, input)
}

func (x *UseCaseMock) RecordCIFailure(ctx context.Context, input *model.RecordCIFailureInput) error {
	if x.RecordCIFailureFunc == nil {
		return nil
	}
	return x.RecordCIFailureFunc(ctx, input)
}

func (x *UseCaseMock) IngestNote(ctx context.Context, input *model.IngestNoteInput) ([]model.ChecklistItem, error) {
	if x.IngestNoteFunc == nil {
		return nil, nil
	}
	return x.IngestNoteFunc(ctx, input)
}

func (x *UseCaseMock) MonitorWorktrees(ctx context.Context, roots []string) ([]*model.WorktreeSnapshot, error) {
	if x.MonitorWorktreesFunc == nil {
		return nil, nil
	}
	return x.MonitorWorktreesFunc(ctx, roots)
}

func (x *UseCaseMock) RenderCase(ctx context.Context, id types.CaseID) (string, error) {
	if x.RenderCaseFunc == nil {
		return "", nil
	}
	return x.RenderCaseFunc(ctx, id)
}
