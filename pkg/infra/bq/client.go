package bq

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

type Client struct {
	bqClient *bigquery.Client
	dataset  string
	tableID  types.BQTableID
}

var _ interfaces.BigQuery = (*Client)(nil)

func New(ctx context.Context, projectID types.GoogleProjectID, datasetID types.BQDatasetID, tableID types.BQTableID, options ...option.ClientOption) (*Client, error) {
	bqClient, err := bigquery.NewClient(ctx, projectID.String(), options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client", goerr.V("projectID", projectID))
	}

	return &Client{
		bqClient: bqClient,
		dataset:  datasetID.String(),
		tableID:  tableID,
	}, nil
}

// CreateTable implements interfaces.BigQuery.
func (x *Client) CreateTable(ctx context.Context, md *bigquery.TableMetadata) error {
	if err := x.bqClient.Dataset(x.dataset).Table(x.tableID.String()).Create(ctx, md); err != nil {
		return goerr.Wrap(err, "failed to create table", goerr.V("dataset", x.dataset), goerr.V("table", x.tableID))
	}
	return nil
}

// GetMetadata implements interfaces.BigQuery. If the table does not exist, it returns nil.
func (x *Client) GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error) {
	md, err := x.bqClient.Dataset(x.dataset).Table(x.tableID.String()).Metadata(ctx)
	if err != nil {
		if gErr, ok := err.(*googleapi.Error); ok && gErr.Code == 404 {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get table metadata", goerr.V("dataset", x.dataset), goerr.V("table", x.tableID))
	}

	return md, nil
}

// UpdateTable implements interfaces.BigQuery.
func (x *Client) UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error {
	if _, err := x.bqClient.Dataset(x.dataset).Table(x.tableID.String()).Update(ctx, md, eTag); err != nil {
		return goerr.Wrap(err, "failed to update table", goerr.V("dataset", x.dataset), goerr.V("table", x.tableID))
	}
	return nil
}

// Insert implements interfaces.BigQuery via the streaming inserter.
func (x *Client) Insert(ctx context.Context, schema bigquery.Schema, data any) error {
	inserter := x.bqClient.Dataset(x.dataset).Table(x.tableID.String()).Inserter()

	saver := &bigquery.StructSaver{
		Schema: schema,
		Struct: data,
	}

	if err := inserter.Put(ctx, saver); err != nil {
		return goerr.Wrap(err, "failed to insert row",
			goerr.V("dataset", x.dataset),
			goerr.V("table", x.tableID),
		)
	}

	return nil
}
