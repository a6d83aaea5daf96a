package usecase

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/notes"
	"github.com/caselog-dev/caselog/pkg/report"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
)

// IngestNote parses a next-steps markdown note and replaces the
// checklist of the target case with the task list items found.
func (x *UseCase) IngestNote(ctx context.Context, input *model.IngestNoteInput) ([]model.ChecklistItem, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	items, err := notes.ParseChecklist(input.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse note", goerr.V("source", input.Source))
	}

	repo := x.clients.CaseRepository()
	c, err := repo.GetCase(ctx, input.CaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("caseID", input.CaseID))
	}

	c.Checklist = items
	c.UpdatedAt = logging.CtxTime(ctx)

	if err := repo.UpdateCase(ctx, c); err != nil {
		return nil, goerr.Wrap(err, "failed to update checklist", goerr.V("caseID", c.ID))
	}

	logging.From(ctx).Info("ingested note",
		slog.Any("caseID", c.ID),
		slog.String("source", input.Source),
		slog.Int("items", len(items)),
	)

	return items, nil
}

// RenderCase renders the current state of a case: the closure
// confirmation for closed cases, the next-steps checklist otherwise.
func (x *UseCase) RenderCase(ctx context.Context, id types.CaseID) (string, error) {
	c, err := x.clients.CaseRepository().GetCase(ctx, id)
	if err != nil {
		return "", goerr.Wrap(err, "failed to get case", goerr.V("caseID", id))
	}

	if c.Status == types.CaseStatusClosed {
		return report.CaseClosure(c)
	}
	return report.NextSteps(c)
}
