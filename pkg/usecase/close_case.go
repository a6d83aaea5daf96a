package usecase

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/bqs"
	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/report"
	"github.com/caselog-dev/caselog/pkg/repository"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
)

// CloseCase closes a case, renders the closure confirmation, posts it
// as an issue comment when a GitHub client is configured, and exports
// the closure record to BigQuery.
func (x *UseCase) CloseCase(ctx context.Context, input *model.CloseCaseInput) (*model.Case, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	repo := x.clients.CaseRepository()
	c, err := repo.GetCase(ctx, input.CaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get case", goerr.V("caseID", input.CaseID))
	}

	if err := c.Close(input.Summary, logging.CtxTime(ctx)); err != nil {
		return nil, err
	}

	if err := repo.UpdateCase(ctx, c); err != nil {
		return nil, goerr.Wrap(err, "failed to update case", goerr.V("caseID", c.ID))
	}

	doc, err := report.CaseClosure(c)
	if err != nil {
		return nil, err
	}

	x.publishClosure(ctx, c, doc, input.InstallID)

	logging.From(ctx).Info("closed case",
		slog.Any("caseID", c.ID),
		slog.String("repo", string(c.Repo.ID())),
	)

	return c, nil
}

// RecordIssueClosure handles a GitHub `issues` closed event. The
// matching case is closed; when no case tracks the issue, a closed
// case is created so that the closure is still on record.
func (x *UseCase) RecordIssueClosure(ctx context.Context, input *model.RecordIssueClosureInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	repo := x.clients.CaseRepository()
	issue := input.Meta.Issue
	repoID := input.Meta.GitHubRepo.ID()
	now := logging.CtxTime(ctx)

	c, err := repo.GetCaseByIssue(ctx, repoID, issue.Number)
	switch {
	case err == nil:
		if closeErr := c.Close(issue.Title, now); closeErr != nil {
			if errors.Is(closeErr, types.ErrCaseAlreadyClosed) {
				logging.From(ctx).Debug("case already closed, ignoring issue closure",
					slog.Any("caseID", c.ID),
				)
				return nil
			}
			return closeErr
		}
		if err := repo.UpdateCase(ctx, c); err != nil {
			return goerr.Wrap(err, "failed to update case", goerr.V("caseID", c.ID))
		}

	case errors.Is(err, repository.ErrNotFound):
		c = &model.Case{
			ID:             types.NewCaseID(),
			Repo:           input.Meta.GitHubRepo,
			Title:          issue.Title,
			IssueNumber:    issue.Number,
			Status:         types.CaseStatusClosed,
			ClosureSummary: issue.Title,
			OpenedAt:       now,
			ClosedAt:       now,
			UpdatedAt:      now,
		}
		if err := repo.CreateCase(ctx, c); err != nil {
			return goerr.Wrap(err, "failed to create case for closed issue")
		}

	default:
		return goerr.Wrap(err, "failed to look up case by issue")
	}

	doc, err := report.IssueClosure(c, issue)
	if err != nil {
		return err
	}

	x.publishClosure(ctx, c, doc, input.InstallID)

	logging.From(ctx).Info("recorded issue closure",
		slog.String("repo", string(repoID)),
		slog.Any("issueNumber", issue.Number),
		slog.Any("caseID", c.ID),
	)

	return nil
}

// publishClosure posts the rendered document to the case's issue and
// exports the closure record. Failures here are reported but do not
// fail the closure itself: the case state is already persisted.
func (x *UseCase) publishClosure(ctx context.Context, c *model.Case, doc string, installID types.GitHubAppInstallID) {
	if gh := x.clients.GitHubApp(); gh != nil && c.IssueNumber != 0 && installID != 0 {
		err := gh.CreateIssueComment(ctx, &interfaces.CreateIssueCommentInput{
			Owner:     c.Repo.Owner,
			Repo:      c.Repo.RepoName,
			Number:    c.IssueNumber,
			Body:      doc,
			InstallID: installID,
		})
		if err != nil {
			logging.From(ctx).Error("failed to post closure comment",
				slog.Any("caseID", c.ID),
				slog.Any("error", err),
			)
		}
	}

	if x.clients.BigQuery() != nil {
		if err := x.exportClosure(ctx, c); err != nil {
			logging.From(ctx).Error("failed to export closure record",
				slog.Any("caseID", c.ID),
				slog.Any("error", err),
			)
		}
	}
}

func (x *UseCase) exportClosure(ctx context.Context, c *model.Case) error {
	record := &model.ClosureRecord{
		CaseID:      c.ID,
		Timestamp:   c.ClosedAt.UTC(),
		Repo:        string(c.Repo.ID()),
		Title:       c.Title,
		IssueNumber: int(c.IssueNumber),
		Summary:     c.ClosureSummary,
		Commits:     len(c.Commits),
		OpenSteps:   len(c.RemainingSteps()),
		Status:      c.Status,
	}

	schema, err := createOrUpdateTable(ctx, x.clients.BigQuery(), record)
	if err != nil {
		return err
	}

	rawRecord := &model.ClosureRawRecord{
		ClosureRecord: *record,
		Timestamp:     record.Timestamp.UnixMicro(),
	}

	if err := x.clients.BigQuery().Insert(ctx, schema, rawRecord); err != nil {
		return goerr.Wrap(err, "failed to insert closure record to BigQuery")
	}

	return nil
}

func createOrUpdateTable(ctx context.Context, bq interfaces.BigQuery, record any) (bigquery.Schema, error) {
	schema, err := bqs.Infer(record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to infer record schema")
	}

	metaData, err := bq.GetMetadata(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get table metadata")
	}
	if metaData == nil {
		if err := bq.CreateTable(ctx, &bigquery.TableMetadata{
			Schema: schema,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to create BigQuery table")
		}
		return schema, nil
	}

	if bqs.Equal(metaData.Schema, schema) {
		return schema, nil
	}

	mergedSchema, err := bqs.Merge(metaData.Schema, schema)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to merge BigQuery schema")
	}
	if err := bq.UpdateTable(ctx, bigquery.TableMetadataToUpdate{
		Schema: mergedSchema,
	}, metaData.ETag); err != nil {
		return nil, goerr.Wrap(err, "failed to update BigQuery table")
	}

	return mergedSchema, nil
}
