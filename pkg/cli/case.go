package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/caselog-dev/caselog/pkg/cli/config"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/infra"
	"github.com/caselog-dev/caselog/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"

	"github.com/urfave/cli/v3"

	_ "github.com/lib/pq"
)

func openCommand() *cli.Command {
	var (
		title     string
		issue     int
		branch    string
		repoID    string
		installID int64

		postgres  config.Postgres
		githubApp config.GitHubApp
	)

	return &cli.Command{
		Name:  "open",
		Usage: "Open a new case for a repository",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "Case title (resolved from the issue via the GitHub App when omitted)",
				Destination: &title,
			},
			&cli.IntFlag{
				Name:        "issue",
				Aliases:     []string{"i"},
				Usage:       "Tracked issue number",
				Destination: &issue,
			},
			&cli.StringFlag{
				Name:        "branch",
				Aliases:     []string{"b"},
				Usage:       "Working branch tracked by the case",
				Destination: &branch,
			},
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "Repository in owner/name form (detected from the current checkout when omitted)",
				Destination: &repoID,
			},
			&cli.Int64Flag{
				Name:        "install-id",
				Usage:       "GitHub App installation ID for issue lookups",
				Sources:     cli.EnvVars("CASELOG_GITHUB_INSTALL_ID"),
				Destination: &installID,
			},
		}, postgres.Flags(), githubApp.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := requirePostgres(&postgres); err != nil {
				return err
			}

			repo, meta, err := caseTarget(ctx, repoID, branch)
			if err != nil {
				return err
			}

			caseRepo, err := postgres.NewRepository()
			if err != nil {
				return err
			}

			options := []infra.Option{infra.WithCaseRepository(caseRepo)}
			if githubApp.Enabled() {
				ghapp, err := githubApp.New()
				if err != nil {
					return err
				}
				options = append(options, infra.WithGitHubApp(ghapp))
			}

			uc := usecase.New(infra.New(options...))

			opened, err := uc.OpenCase(ctx, &model.OpenCaseInput{
				Repo:        repo,
				Title:       title,
				IssueNumber: types.IssueNumber(issue),
				Branch:      types.BranchName(meta.Branch),
				InstallID:   types.GitHubAppInstallID(installID),
			})
			if err != nil {
				return err
			}

			fmt.Printf("opened case %s: %s\n", opened.ID, opened.Title)
			return nil
		},
	}
}

func closeCommand() *cli.Command {
	var (
		caseID  string
		summary string

		postgres config.Postgres
	)

	return &cli.Command{
		Name:  "close",
		Usage: "Close a case and print the closure confirmation",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "case-id",
				Usage:       "Case ID to close",
				Required:    true,
				Destination: &caseID,
			},
			&cli.StringFlag{
				Name:        "summary",
				Aliases:     []string{"s"},
				Usage:       "One-line closure summary",
				Destination: &summary,
			},
		}, postgres.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := requirePostgres(&postgres); err != nil {
				return err
			}

			repo, err := postgres.NewRepository()
			if err != nil {
				return err
			}

			uc := usecase.New(infra.New(infra.WithCaseRepository(repo)))

			closed, err := uc.CloseCase(ctx, &model.CloseCaseInput{
				CaseID:  types.CaseID(caseID),
				Summary: summary,
			})
			if err != nil {
				return err
			}

			doc, err := uc.RenderCase(ctx, closed.ID)
			if err != nil {
				return err
			}
			fmt.Println(doc)

			return nil
		},
	}
}

// caseTarget resolves the repository a case command acts on, falling
// back to the current git checkout when --repo is not given.
func caseTarget(ctx context.Context, repoID, branch string) (model.GitHubRepo, model.GitHubMetadata, error) {
	meta := model.GitHubMetadata{}
	meta.Branch = branch

	if repoID == "" {
		if err := AutoDetectGitMetadata(ctx, &meta); err != nil {
			return model.GitHubRepo{}, meta, err
		}
		return model.GitHubRepo{Owner: meta.Owner, RepoName: meta.RepoName}, meta, nil
	}

	owner, name, ok := strings.Cut(repoID, "/")
	if !ok || owner == "" || name == "" {
		return model.GitHubRepo{}, meta, goerr.New("repo must be in owner/name form", goerr.V("repo", repoID))
	}
	meta.Owner = owner
	meta.RepoName = name
	return model.GitHubRepo{Owner: owner, RepoName: name}, meta, nil
}
