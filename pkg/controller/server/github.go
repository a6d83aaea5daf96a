package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"
)

// webhookAction is what a validated GitHub App event asks the usecase
// layer to do. At most one field is set; an event that needs no
// bookkeeping maps to a nil action.
type webhookAction struct {
	CaseOpen     *model.OpenCaseInput
	IssueClosure *model.RecordIssueClosureInput
	CIFailure    *model.RecordCIFailureInput
	Commit       *model.GitHubCommit
}

// validateGitHubAppEvent validates and parses a GitHub App webhook event.
// It returns the action to record, or nil when the event needs none.
// This function is synchronous and should be called before starting
// background processing.
func validateGitHubAppEvent(r *http.Request, key types.GitHubAppSecret) (*webhookAction, error) {
	ctx := r.Context()
	payload, err := github.ValidatePayload(r, []byte(key))
	if err != nil {
		return nil, goerr.Wrap(err, "validating payload")
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		return nil, goerr.Wrap(err, "parsing webhook")
	}

	logging.From(ctx).With(slog.Any("eventType", github.WebHookType(r))).Info("Received GitHub App event")

	return githubEventToAction(event), nil
}

// dispatchGitHubEvent records the parsed event. This function is
// designed to be called from a background goroutine.
func dispatchGitHubEvent(ctx context.Context, uc interfaces.UseCase, action *webhookAction) {
	logger := logging.From(ctx)

	var err error
	switch {
	case action.CaseOpen != nil:
		_, err = uc.OpenCase(ctx, action.CaseOpen)
	case action.IssueClosure != nil:
		err = uc.RecordIssueClosure(ctx, action.IssueClosure)
	case action.CIFailure != nil:
		err = uc.RecordCIFailure(ctx, action.CIFailure)
	case action.Commit != nil:
		err = uc.AttachCommit(ctx, action.Commit)
	default:
		return
	}

	if err != nil {
		logger.Error("Background recording failed", slog.Any("error", err))
	}
}

func refToBranch(v string) string {
	if ref := strings.SplitN(v, "/", 3); len(ref) == 3 && ref[0] == "refs" && ref[1] == "heads" {
		return ref[2]
	}
	return v
}

func eventRepo(repo *github.Repository) model.GitHubRepo {
	return model.GitHubRepo{
		RepoID:   repo.GetID(),
		Owner:    repo.GetOwner().GetLogin(),
		RepoName: repo.GetName(),
	}
}

func githubEventToAction(event interface{}) *webhookAction {
	switch ev := event.(type) {
	case *github.PushEvent:
		if ev.HeadCommit == nil || ev.HeadCommit.ID == nil {
			logging.Default().Warn("ignore push event without head commit", slog.Any("event", ev))
			return nil
		}

		return &webhookAction{
			Commit: &model.GitHubCommit{
				GitHubRepo: model.GitHubRepo{
					RepoID:   ev.GetRepo().GetID(),
					Owner:    ev.GetRepo().GetOwner().GetLogin(),
					RepoName: ev.GetRepo().GetName(),
				},
				CommitID: ev.GetHeadCommit().GetID(),
				Branch:   refToBranch(ev.GetRef()),
				Ref:      ev.GetRef(),
				Message:  ev.GetHeadCommit().GetMessage(),
				Committer: model.GitHubUser{
					Login: ev.GetHeadCommit().GetCommitter().GetLogin(),
					Email: ev.GetHeadCommit().GetCommitter().GetEmail(),
				},
			},
		}

	case *github.IssuesEvent:
		switch ev.GetAction() {
		case "opened":
			issue := ev.GetIssue()
			return &webhookAction{
				CaseOpen: &model.OpenCaseInput{
					Repo:        eventRepo(ev.GetRepo()),
					Title:       issue.GetTitle(),
					IssueNumber: types.IssueNumber(issue.GetNumber()),
					InstallID:   types.GitHubAppInstallID(ev.GetInstallation().GetID()),
				},
			}
		case "closed":
			// handled below
		default:
			logging.Default().Debug("ignore issues event", slog.String("action", ev.GetAction()))
			return nil
		}

		issue := ev.GetIssue()
		return &webhookAction{
			IssueClosure: &model.RecordIssueClosureInput{
				Meta: model.GitHubMetadata{
					GitHubCommit: model.GitHubCommit{
						GitHubRepo: eventRepo(ev.GetRepo()),
					},
					DefaultBranch:  ev.GetRepo().GetDefaultBranch(),
					InstallationID: ev.GetInstallation().GetID(),
					Issue: &model.GitHubIssue{
						ID:     issue.GetID(),
						Number: types.IssueNumber(issue.GetNumber()),
						Title:  issue.GetTitle(),
						State:  issue.GetState(),
						URL:    issue.GetHTMLURL(),
						User: model.GitHubUser{
							ID:    issue.GetUser().GetID(),
							Login: issue.GetUser().GetLogin(),
						},
					},
				},
				InstallID: types.GitHubAppInstallID(ev.GetInstallation().GetID()),
			},
		}

	case *github.WorkflowRunEvent:
		if ev.GetAction() != "completed" {
			return nil
		}
		run := ev.GetWorkflowRun()
		conclusion := types.CIConclusion(run.GetConclusion())
		if !conclusion.Failed() {
			logging.Default().Debug("ignore workflow run", slog.String("conclusion", run.GetConclusion()))
			return nil
		}

		return &webhookAction{
			CIFailure: &model.RecordCIFailureInput{
				Failure: model.CIFailure{
					RunID:        types.WorkflowRunID(run.GetID()),
					Kind:         types.CIKindWorkflowRun,
					Repo:         eventRepo(ev.GetRepo()),
					WorkflowName: ev.GetWorkflow().GetName(),
					Branch:       types.BranchName(run.GetHeadBranch()),
					CommitSHA:    types.CommitSHA(run.GetHeadSHA()),
					Conclusion:   conclusion,
					URL:          run.GetHTMLURL(),
					HeadMessage:  run.GetHeadCommit().GetMessage(),
					OccurredAt:   run.GetRunStartedAt().Time,
				},
				InstallID: types.GitHubAppInstallID(ev.GetInstallation().GetID()),
			},
		}

	case *github.CheckRunEvent:
		if ev.GetAction() != "completed" {
			return nil
		}
		run := ev.GetCheckRun()
		conclusion := types.CIConclusion(run.GetConclusion())
		if !conclusion.Failed() {
			logging.Default().Debug("ignore check run", slog.String("conclusion", run.GetConclusion()))
			return nil
		}

		return &webhookAction{
			CIFailure: &model.RecordCIFailureInput{
				Failure: model.CIFailure{
					RunID:        types.WorkflowRunID(run.GetID()),
					Kind:         types.CIKindCheckRun,
					Repo:         eventRepo(ev.GetRepo()),
					WorkflowName: run.GetName(),
					Branch:       types.BranchName(run.GetCheckSuite().GetHeadBranch()),
					CommitSHA:    types.CommitSHA(run.GetHeadSHA()),
					Conclusion:   conclusion,
					URL:          run.GetHTMLURL(),
					OccurredAt:   run.GetCompletedAt().Time,
				},
				InstallID: types.GitHubAppInstallID(ev.GetInstallation().GetID()),
			},
		}

	case *github.InstallationEvent, *github.InstallationRepositoriesEvent:
		return nil // ignore

	default:
		logging.Default().Warn("unsupported event", slog.Any("event", fmt.Sprintf("%T", event)))
		return nil
	}
}

// Test helpers - exported for testing
func RefToBranchForTest(v string) string {
	return refToBranch(v)
}

func GithubEventToActionForTest(event interface{}) (*model.OpenCaseInput, *model.RecordIssueClosureInput, *model.RecordCIFailureInput, *model.GitHubCommit) {
	action := githubEventToAction(event)
	if action == nil {
		return nil, nil, nil, nil
	}
	return action.CaseOpen, action.IssueClosure, action.CIFailure, action.Commit
}
