package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/report"
	"github.com/caselog-dev/caselog/pkg/repository"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
)

// dedupTTL bounds how long a webhook delivery key is remembered.
// GitHub redeliveries happen within minutes; a day is comfortably over.
const dedupTTL = 24 * time.Hour

type ciPolicyResult struct {
	Skip bool `json:"skip"`
}

// RecordCIFailure persists one failed CI run. Redeliveries of the same
// run are dropped via the dedup cache, and an optional Rego policy can
// skip failures that should not be recorded.
func (x *UseCase) RecordCIFailure(ctx context.Context, input *model.RecordCIFailureInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	failure := input.Failure
	logger := logging.From(ctx).With(slog.Any("runID", failure.RunID))

	key := fmt.Sprintf("ci-failure:%s:%s:%d", failure.Repo.ID(), failure.Kind, failure.RunID)
	seen, err := x.clients.DedupCache().Seen(ctx, key)
	if err != nil {
		return goerr.Wrap(err, "failed to check dedup cache", goerr.V("key", key))
	}
	if seen {
		logger.Debug("duplicate CI failure delivery, skipping")
		return nil
	}

	if policy := x.clients.Policy(); policy != nil {
		var result ciPolicyResult
		if err := policy.Query(ctx, &failure, &result); err != nil {
			return goerr.Wrap(err, "failed to evaluate CI failure policy")
		}
		if result.Skip {
			logger.Info("CI failure skipped by policy",
				slog.String("workflow", failure.WorkflowName),
			)
			return nil
		}
	}

	repo := x.clients.CaseRepository()

	// Attach the failure to the open case working the same branch
	if c, err := repo.GetOpenCaseByBranch(ctx, failure.Repo.ID(), failure.Branch); err == nil {
		failure.CaseID = c.ID
	} else if !errors.Is(err, repository.ErrNotFound) {
		return goerr.Wrap(err, "failed to look up case for CI failure")
	}

	if err := repo.CreateCIFailure(ctx, &failure); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			logger.Debug("CI failure already recorded")
			x.markDelivery(ctx, key)
			return nil
		}
		// The key stays unmarked so that GitHub's redelivery of the
		// same run can retry the store.
		return goerr.Wrap(err, "failed to store CI failure")
	}

	x.markDelivery(ctx, key)

	doc, err := report.CIFailure(&failure)
	if err != nil {
		return err
	}

	x.publishCIFailure(ctx, &failure, doc, input)

	logger.Info("recorded CI failure",
		slog.String("repo", string(failure.Repo.ID())),
		slog.String("workflow", failure.WorkflowName),
		slog.Any("caseID", failure.CaseID),
	)

	return nil
}

// markDelivery is best effort: an unmarked key only means a redelivery
// reaches the repository, which rejects it as already recorded.
func (x *UseCase) markDelivery(ctx context.Context, key string) {
	if err := x.clients.DedupCache().Mark(ctx, key, dedupTTL); err != nil {
		logging.From(ctx).Warn("failed to mark delivery key",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
}

// publishCIFailure posts the failure log to the issue of the attached
// case. Posting is best effort: the record is already stored.
func (x *UseCase) publishCIFailure(ctx context.Context, failure *model.CIFailure, doc string, input *model.RecordCIFailureInput) {
	gh := x.clients.GitHubApp()
	if gh == nil || failure.CaseID == "" || input.InstallID == 0 {
		return
	}

	c, err := x.clients.CaseRepository().GetCase(ctx, failure.CaseID)
	if err != nil || c.IssueNumber == 0 {
		return
	}

	err = gh.CreateIssueComment(ctx, &interfaces.CreateIssueCommentInput{
		Owner:     failure.Repo.Owner,
		Repo:      failure.Repo.RepoName,
		Number:    c.IssueNumber,
		Body:      doc,
		InstallID: input.InstallID,
	})
	if err != nil {
		logging.From(ctx).Error("failed to post CI failure comment",
			slog.Any("caseID", failure.CaseID),
			slog.Any("error", err),
		)
	}
}
