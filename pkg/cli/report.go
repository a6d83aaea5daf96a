package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/caselog-dev/caselog/pkg/cli/config"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/infra"
	"github.com/caselog-dev/caselog/pkg/report"
	"github.com/caselog-dev/caselog/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"

	"github.com/urfave/cli/v3"

	_ "github.com/lib/pq"
)

func reportCommand() *cli.Command {
	var (
		caseID string
		repoID string
		since  time.Duration

		postgres config.Postgres
	)

	return &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Render case and CI failure documents to stdout",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "case-id",
				Usage:       "Case ID to render",
				Destination: &caseID,
			},
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "Repository in owner/name form for CI failure listing (detected from the current checkout when omitted)",
				Destination: &repoID,
			},
			&cli.DurationFlag{
				Name:        "since",
				Usage:       "Render CI failures of --repo newer than this age, e.g. 72h",
				Value:       7 * 24 * time.Hour,
				Destination: &since,
			},
		}, postgres.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := requirePostgres(&postgres); err != nil {
				return err
			}
			if caseID == "" && repoID == "" {
				var meta model.GitHubMetadata
				if err := AutoDetectGitMetadata(ctx, &meta); err != nil {
					return goerr.Wrap(err, "either --case-id or --repo is required")
				}
				repoID = meta.Owner + "/" + meta.RepoName
			}

			repo, err := postgres.NewRepository()
			if err != nil {
				return err
			}

			uc := usecase.New(infra.New(infra.WithCaseRepository(repo)))

			if caseID != "" {
				doc, err := uc.RenderCase(ctx, types.CaseID(caseID))
				if err != nil {
					return err
				}
				fmt.Println(doc)
			}

			if repoID != "" {
				failures, err := repo.ListCIFailures(ctx, types.GitHubRepoID(repoID), time.Now().Add(-since))
				if err != nil {
					return err
				}
				for _, failure := range failures {
					doc, err := report.CIFailure(failure)
					if err != nil {
						return err
					}
					fmt.Println(doc)
				}
			}

			return nil
		},
	}
}
