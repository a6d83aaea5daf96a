package ghapp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
)

type Client struct {
	appID types.GitHubAppID
	pem   types.GitHubAppPrivateKey
}

var _ interfaces.GitHubApp = (*Client)(nil)

func New(appID types.GitHubAppID, pem types.GitHubAppPrivateKey) (*Client, error) {
	if appID == 0 {
		return nil, goerr.Wrap(types.ErrInvalidOption, "appID is empty")
	}
	if pem == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "pem is empty")
	}

	return &Client{
		appID: appID,
		pem:   pem,
	}, nil
}

func (x *Client) buildGithubClient(installID types.GitHubAppInstallID) (*github.Client, error) {
	tr := http.DefaultTransport
	itr, err := ghinstallation.New(tr, int64(x.appID), int64(installID), []byte(x.pem))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create github client")
	}

	return github.NewClient(&http.Client{Transport: itr}), nil
}

func (x *Client) GetIssue(ctx context.Context, input *interfaces.GetIssueInput) (*model.GitHubIssue, error) {
	client, err := x.buildGithubClient(input.InstallID)
	if err != nil {
		return nil, err
	}

	issue, resp, err := client.Issues.Get(ctx, input.Owner, input.Repo, int(input.Number))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get issue",
			goerr.V("owner", input.Owner),
			goerr.V("repo", input.Repo),
			goerr.V("number", input.Number),
		)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, goerr.Wrap(types.ErrInvalidGitHubData, "unexpected status from issue API",
			goerr.V("status", resp.StatusCode),
		)
	}

	return &model.GitHubIssue{
		ID:     issue.GetID(),
		Number: types.IssueNumber(issue.GetNumber()),
		Title:  issue.GetTitle(),
		State:  issue.GetState(),
		URL:    issue.GetHTMLURL(),
		User: model.GitHubUser{
			ID:    issue.GetUser().GetID(),
			Login: issue.GetUser().GetLogin(),
		},
	}, nil
}

func (x *Client) CreateIssueComment(ctx context.Context, input *interfaces.CreateIssueCommentInput) error {
	client, err := x.buildGithubClient(input.InstallID)
	if err != nil {
		return err
	}

	comment := &github.IssueComment{Body: github.String(input.Body)}
	_, resp, err := client.Issues.CreateComment(ctx, input.Owner, input.Repo, int(input.Number), comment)
	if err != nil {
		return goerr.Wrap(err, "failed to create issue comment",
			goerr.V("owner", input.Owner),
			goerr.V("repo", input.Repo),
			goerr.V("number", input.Number),
		)
	}

	logging.From(ctx).Debug("created issue comment",
		slog.String("owner", input.Owner),
		slog.String("repo", input.Repo),
		slog.Any("number", input.Number),
		slog.Int("status", resp.StatusCode),
	)

	return nil
}
