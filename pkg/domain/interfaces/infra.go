package interfaces

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

type BigQuery interface {
	Insert(ctx context.Context, schema bigquery.Schema, data any) error

	GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error)
	UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error
	CreateTable(ctx context.Context, md *bigquery.TableMetadata) error
}

// GitHubApp is the GitHub side of case bookkeeping: reading issues and
// posting rendered reports as issue comments.
type GitHubApp interface {
	GetIssue(ctx context.Context, input *GetIssueInput) (*model.GitHubIssue, error)
	CreateIssueComment(ctx context.Context, input *CreateIssueCommentInput) error
}

type GetIssueInput struct {
	Owner     string
	Repo      string
	Number    types.IssueNumber
	InstallID types.GitHubAppInstallID
}

type CreateIssueCommentInput struct {
	Owner     string
	Repo      string
	Number    types.IssueNumber
	Body      string
	InstallID types.GitHubAppInstallID
}

// DedupCache remembers webhook delivery keys so that redeliveries of
// the same event are dropped. Keys are marked only after the event is
// persisted, so a failed delivery stays eligible for redelivery.
type DedupCache interface {
	// Seen reports whether key was marked within its TTL.
	Seen(ctx context.Context, key string) (bool, error)
	// Mark remembers key for ttl.
	Mark(ctx context.Context, key string, ttl time.Duration) error
}

// Policy evaluates a Rego policy for the given input. Implementations
// must leave out untouched when no policy is configured.
type Policy interface {
	Query(ctx context.Context, input any, out any) error
}

// GitClient wraps the git CLI for worktree inspection.
type GitClient interface {
	ListWorktrees(ctx context.Context, repoPath string) ([]model.Worktree, error)
	IsDirty(ctx context.Context, worktreePath string) (bool, error)
}
