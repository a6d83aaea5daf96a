package mock

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
)

// GitHubAppMock implements interfaces.GitHubApp for tests.
type GitHubAppMock struct {
	GetIssueFunc           func(ctx context.Context, input *interfaces.GetIssueInput) (*model.GitHubIssue, error)
	CreateIssueCommentFunc func(ctx context.Context, input *interfaces.CreateIssueCommentInput) error

	CreateIssueCommentCalls []*interfaces.CreateIssueCommentInput
}

var _ interfaces.GitHubApp = (*GitHubAppMock)(nil)

func (x *GitHubAppMock) GetIssue(ctx context.Context, input *interfaces.GetIssueInput) (*model.GitHubIssue, error) {
	if x.GetIssueFunc == nil {
		return nil, nil
	}
	return x.GetIssueFunc(ctx, input)
}

func (x *GitHubAppMock) CreateIssueComment(ctx context.Context, input *interfaces.CreateIssueCommentInput) error {
	x.CreateIssueCommentCalls = append(x.CreateIssueCommentCalls, input)
	if x.CreateIssueCommentFunc == nil {
		return nil
	}
	return x.CreateIssueCommentFunc(ctx, input)
}

// BigQueryMock implements interfaces.BigQuery for tests.
type BigQueryMock struct {
	InsertFunc      func(ctx context.Context, schema bigquery.Schema, data any) error
	GetMetadataFunc func(ctx context.Context) (*bigquery.TableMetadata, error)
	UpdateTableFunc func(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error
	CreateTableFunc func(ctx context.Context, md *bigquery.TableMetadata) error
}

var _ interfaces.BigQuery = (*BigQueryMock)(nil)

func (x *BigQueryMock) Insert(ctx context.Context, schema bigquery.Schema, data any) error {
	if x.InsertFunc == nil {
		return nil
	}
	return x.InsertFunc(ctx, schema, data)
}

func (x *BigQueryMock) GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error) {
	if x.GetMetadataFunc == nil {
		return nil, nil
	}
	return x.GetMetadataFunc(ctx)
}

func (x *BigQueryMock) UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error {
	if x.UpdateTableFunc == nil {
		return nil
	}
	return x.UpdateTableFunc(ctx, md, eTag)
}

func (x *BigQueryMock) CreateTable(ctx context.Context, md *bigquery.TableMetadata) error {
	if x.CreateTableFunc == nil {
		return nil
	}
	return x.CreateTableFunc(ctx, md)
}

// DedupCacheMock implements interfaces.DedupCache for tests.
type DedupCacheMock struct {
	SeenFunc func(ctx context.Context, key string) (bool, error)
	MarkFunc func(ctx context.Context, key string, ttl time.Duration) error
}

var _ interfaces.DedupCache = (*DedupCacheMock)(nil)

func (x *DedupCacheMock) Seen(ctx context.Context, key string) (bool, error) {
	if x.SeenFunc == nil {
		return false, nil
	}
	return x.SeenFunc(ctx, key)
}

func (x *DedupCacheMock) Mark(ctx context.Context, key string, ttl time.Duration) error {
	if x.MarkFunc == nil {
		return nil
	}
	return x.MarkFunc(ctx, key, ttl)
}

// PolicyMock implements interfaces.Policy for tests.
type PolicyMock struct {
	QueryFunc func(ctx context.Context, input any, out any) error
}

var _ interfaces.Policy = (*PolicyMock)(nil)

func (x *PolicyMock) Query(ctx context.Context, input any, out any) error {
	if x.QueryFunc == nil {
		return nil
	}
	return x.QueryFunc(ctx, input, out)
}

// GitClientMock implements interfaces.GitClient for tests.
type GitClientMock struct {
	ListWorktreesFunc func(ctx context.Context, repoPath string) ([]model.Worktree, error)
	IsDirtyFunc       func(ctx context.Context, worktreePath string) (bool, error)
}

var _ interfaces.GitClient = (*GitClientMock)(nil)

func (x *GitClientMock) ListWorktrees(ctx context.Context, repoPath string) ([]model.Worktree, error) {
	if x.ListWorktreesFunc == nil {
		return nil, nil
	}
	return x.ListWorktreesFunc(ctx, repoPath)
}

func (x *GitClientMock) IsDirty(ctx context.Context, worktreePath string) (bool, error) {
	if x.IsDirtyFunc == nil {
		return false, nil
	}
	return x.IsDirtyFunc(ctx, worktreePath)
}
