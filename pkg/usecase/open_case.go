package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/repository"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
)

// OpenCase creates a new tracked case for a repository.
func (x *UseCase) OpenCase(ctx context.Context, input *model.OpenCaseInput) (*model.Case, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	title := input.Title
	if title == "" {
		resolved, err := x.resolveIssueTitle(ctx, input)
		if err != nil {
			return nil, err
		}
		title = resolved
	}

	now := logging.CtxTime(ctx)
	c := &model.Case{
		ID:          types.NewCaseID(),
		Repo:        input.Repo,
		Title:       title,
		IssueNumber: input.IssueNumber,
		Status:      types.CaseStatusOpen,
		Branch:      input.Branch,
		OpenedAt:    now,
		UpdatedAt:   now,
	}

	if err := x.clients.CaseRepository().CreateCase(ctx, c); err != nil {
		return nil, goerr.Wrap(err, "failed to create case")
	}

	logging.From(ctx).Info("opened case",
		slog.Any("caseID", c.ID),
		slog.String("repo", string(c.Repo.ID())),
		slog.Any("issueNumber", c.IssueNumber),
	)

	return c, nil
}

// resolveIssueTitle fills a missing case title from the tracked issue.
func (x *UseCase) resolveIssueTitle(ctx context.Context, input *model.OpenCaseInput) (string, error) {
	gh := x.clients.GitHubApp()
	if gh == nil || input.InstallID == 0 {
		return "", goerr.Wrap(types.ErrValidationFailed,
			"title is required when no GitHub client can resolve the issue")
	}

	issue, err := gh.GetIssue(ctx, &interfaces.GetIssueInput{
		Owner:     input.Repo.Owner,
		Repo:      input.Repo.RepoName,
		Number:    input.IssueNumber,
		InstallID: input.InstallID,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to get issue for case title",
			goerr.V("issueNumber", input.IssueNumber),
		)
	}
	if issue == nil || issue.Title == "" {
		return "", goerr.Wrap(types.ErrValidationFailed, "issue has no title",
			goerr.V("issueNumber", input.IssueNumber),
		)
	}

	return issue.Title, nil
}

// AttachCommit records a pushed commit on the open case tracking the
// same branch. Commits on branches without an open case are skipped.
func (x *UseCase) AttachCommit(ctx context.Context, commit *model.GitHubCommit) error {
	if err := commit.Validate(); err != nil {
		return err
	}

	repo := x.clients.CaseRepository()
	c, err := repo.GetOpenCaseByBranch(ctx, commit.ID(), types.BranchName(commit.Branch))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logging.From(ctx).Debug("no open case for branch, skipping commit",
				slog.String("repo", string(commit.ID())),
				slog.String("branch", commit.Branch),
			)
			return nil
		}
		return goerr.Wrap(err, "failed to look up case for commit")
	}

	for _, existing := range c.Commits {
		if existing.CommitID == commit.CommitID {
			return nil
		}
	}

	c.Commits = append(c.Commits, *commit)
	c.UpdatedAt = logging.CtxTime(ctx)

	if err := repo.UpdateCase(ctx, c); err != nil {
		return goerr.Wrap(err, "failed to attach commit", goerr.V("caseID", c.ID))
	}

	logging.From(ctx).Info("attached commit to case",
		slog.Any("caseID", c.ID),
		slog.String("commitID", commit.CommitID),
	)

	return nil
}
