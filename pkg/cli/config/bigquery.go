package config

import (
	"context"
	"log/slog"

	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/infra/bq"
	"github.com/urfave/cli/v3"
)

type BigQuery struct {
	projectID types.GoogleProjectID
	datasetID types.BQDatasetID
	tableID   types.BQTableID
}

func (x *BigQuery) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bigquery-project-id",
			Usage:       "BigQuery project ID",
			Category:    "BigQuery",
			Destination: (*string)(&x.projectID),
			Sources:     cli.EnvVars("CASELOG_BIGQUERY_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "bigquery-dataset-id",
			Usage:       "BigQuery dataset ID",
			Category:    "BigQuery",
			Destination: (*string)(&x.datasetID),
			Sources:     cli.EnvVars("CASELOG_BIGQUERY_DATASET_ID"),
		},
		&cli.StringFlag{
			Name:        "bigquery-table-id",
			Usage:       "BigQuery table ID",
			Category:    "BigQuery",
			Destination: (*string)(&x.tableID),
			Sources:     cli.EnvVars("CASELOG_BIGQUERY_TABLE_ID"),
			Value:       "closures",
		},
	}
}

// NewClient returns nil without error when BigQuery is not configured.
func (x *BigQuery) NewClient(ctx context.Context) (*bq.Client, error) {
	if x.projectID == "" || x.datasetID == "" {
		return nil, nil
	}
	return bq.New(ctx, x.projectID, x.datasetID, x.tableID)
}

func (x *BigQuery) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("projectID", x.projectID),
		slog.Any("datasetID", x.datasetID),
		slog.Any("tableID", x.tableID),
	)
}
