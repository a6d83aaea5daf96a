package cli

import (
	"context"
	"fmt"
	"os"

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

func ingestCommand() *cli.Command {
	var (
		caseID string
		file   string

		postgres config.Postgres
	)

	return &cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Ingest a next-steps markdown note into a case checklist",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "case-id",
				Usage:       "Case ID to update",
				Required:    true,
				Destination: &caseID,
			},
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"F"},
				Usage:       "Path to markdown note with task list items",
				Required:    true,
				Destination: &file,
			},
		}, postgres.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := requirePostgres(&postgres); err != nil {
				return err
			}

			body, err := os.ReadFile(file)
			if err != nil {
				return goerr.Wrap(err, "failed to read note", goerr.V("file", file))
			}

			repo, err := postgres.NewRepository()
			if err != nil {
				return err
			}

			uc := usecase.New(infra.New(infra.WithCaseRepository(repo)))

			items, err := uc.IngestNote(ctx, &model.IngestNoteInput{
				CaseID: types.CaseID(caseID),
				Source: file,
				Body:   body,
			})
			if err != nil {
				return err
			}

			fmt.Printf("ingested %d checklist items into case %s\n", len(items), caseID)
			return nil
		},
	}
}
