package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/repository"
)

type caseRepository struct {
	db *sql.DB
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// Case operations

func (r *caseRepository) CreateCase(ctx context.Context, c *model.Case) error {
	commits, checklist, pullRequest, err := marshalCaseFields(c)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO cases (
			id, repo_id, owner, repo_name, title, issue_number, pull_request,
			status, branch, commits, checklist, closure_summary,
			opened_at, closed_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		string(c.ID), c.Repo.RepoID, c.Repo.Owner, c.Repo.RepoName,
		c.Title, int(c.IssueNumber), pullRequest,
		string(c.Status), string(c.Branch), commits, checklist, c.ClosureSummary,
		c.OpenedAt, nullTime(c.ClosedAt), c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(repository.ErrAlreadyExists, "case already exists",
				goerr.V("caseID", c.ID),
			)
		}
		return goerr.Wrap(err, "failed to insert case", goerr.V("caseID", c.ID))
	}

	return nil
}

func (r *caseRepository) UpdateCase(ctx context.Context, c *model.Case) error {
	commits, checklist, pullRequest, err := marshalCaseFields(c)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE cases SET
			title = $2, issue_number = $3, pull_request = $4, status = $5,
			branch = $6, commits = $7, checklist = $8, closure_summary = $9,
			closed_at = $10, updated_at = $11
		WHERE id = $1`,
		string(c.ID), c.Title, int(c.IssueNumber), pullRequest, string(c.Status),
		string(c.Branch), commits, checklist, c.ClosureSummary,
		nullTime(c.ClosedAt), c.UpdatedAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to update case", goerr.V("caseID", c.ID))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to get affected rows")
	}
	if affected == 0 {
		return goerr.Wrap(repository.ErrNotFound, "case not found", goerr.V("caseID", c.ID))
	}

	return nil
}

const caseColumns = `
	id, repo_id, owner, repo_name, title, issue_number, pull_request,
	status, branch, commits, checklist, closure_summary,
	opened_at, closed_at, updated_at`

func (r *caseRepository) GetCase(ctx context.Context, id types.CaseID) (*model.Case, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, string(id))

	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrNotFound, "case not found", goerr.V("caseID", id))
	}
	return c, err
}

func (r *caseRepository) GetCaseByIssue(ctx context.Context, repoID types.GitHubRepoID, number types.IssueNumber) (*model.Case, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases
		WHERE owner = $1 AND repo_name = $2 AND issue_number = $3
		ORDER BY opened_at DESC LIMIT 1`,
		owner, name, int(number))

	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrNotFound, "case not found",
			goerr.V("repoID", repoID),
			goerr.V("issueNumber", number),
		)
	}
	return c, err
}

func (r *caseRepository) GetOpenCaseByBranch(ctx context.Context, repoID types.GitHubRepoID, branch types.BranchName) (*model.Case, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+caseColumns+` FROM cases
		WHERE owner = $1 AND repo_name = $2 AND branch = $3 AND status != $4
		ORDER BY opened_at DESC LIMIT 1`,
		owner, name, string(branch), string(types.CaseStatusClosed))

	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrNotFound, "open case not found",
			goerr.V("repoID", repoID),
			goerr.V("branch", branch),
		)
	}
	return c, err
}

func (r *caseRepository) ListCases(ctx context.Context, repoID types.GitHubRepoID, status types.CaseStatus) ([]*model.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE 1=1`
	var args []any

	if repoID != "" {
		owner, name, err := splitRepoID(repoID)
		if err != nil {
			return nil, err
		}
		args = append(args, owner)
		query += ` AND owner = $` + strconv.Itoa(len(args))
		args = append(args, name)
		query += ` AND repo_name = $` + strconv.Itoa(len(args))
	}
	if status != "" {
		args = append(args, string(status))
		query += ` AND status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY opened_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query cases")
	}
	defer rows.Close()

	var cases []*model.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}

	return cases, rows.Err()
}

// CI failure operations

func (r *caseRepository) CreateCIFailure(ctx context.Context, failure *model.CIFailure) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ci_failures (
			run_id, kind, repo_id, owner, repo_name, workflow_name, branch,
			commit_sha, conclusion, url, head_message, case_id, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		int64(failure.RunID), string(failure.Kind), failure.Repo.RepoID, failure.Repo.Owner, failure.Repo.RepoName,
		failure.WorkflowName, string(failure.Branch), string(failure.CommitSHA),
		string(failure.Conclusion), failure.URL, failure.HeadMessage,
		nullString(string(failure.CaseID)), failure.OccurredAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return goerr.Wrap(repository.ErrAlreadyExists, "CI failure already recorded",
				goerr.V("kind", failure.Kind),
				goerr.V("runID", failure.RunID),
			)
		}
		return goerr.Wrap(err, "failed to insert CI failure", goerr.V("runID", failure.RunID))
	}

	return nil
}

func (r *caseRepository) GetCIFailure(ctx context.Context, kind types.CIKind, runID types.WorkflowRunID) (*model.CIFailure, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT run_id, kind, repo_id, owner, repo_name, workflow_name, branch,
			commit_sha, conclusion, url, head_message, case_id, occurred_at
		FROM ci_failures WHERE kind = $1 AND run_id = $2`, string(kind), int64(runID))

	failure, err := scanFailure(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrNotFound, "CI failure not found",
			goerr.V("kind", kind), goerr.V("runID", runID))
	}
	return failure, err
}

func (r *caseRepository) ListCIFailures(ctx context.Context, repoID types.GitHubRepoID, since time.Time) ([]*model.CIFailure, error) {
	owner, name, err := splitRepoID(repoID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, kind, repo_id, owner, repo_name, workflow_name, branch,
			commit_sha, conclusion, url, head_message, case_id, occurred_at
		FROM ci_failures
		WHERE owner = $1 AND repo_name = $2 AND occurred_at >= $3
		ORDER BY occurred_at ASC`,
		owner, name, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query CI failures")
	}
	defer rows.Close()

	var failures []*model.CIFailure
	for rows.Next() {
		failure, err := scanFailure(rows)
		if err != nil {
			return nil, err
		}
		failures = append(failures, failure)
	}

	return failures, rows.Err()
}

// Worktree snapshot operations

func (r *caseRepository) PutWorktreeSnapshot(ctx context.Context, snapshot *model.WorktreeSnapshot) error {
	worktrees, err := json.Marshal(snapshot.Worktrees)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal worktrees")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO worktree_snapshots (id, root, worktrees, taken_at)
		VALUES ($1, $2, $3, $4)`,
		string(snapshot.ID), snapshot.Root, worktrees, snapshot.TakenAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert worktree snapshot", goerr.V("root", snapshot.Root))
	}

	return nil
}

func (r *caseRepository) ListWorktreeSnapshots(ctx context.Context, root string, limit int) ([]*model.WorktreeSnapshot, error) {
	query := `
		SELECT id, root, worktrees, taken_at
		FROM worktree_snapshots WHERE root = $1
		ORDER BY taken_at DESC`
	args := []any{root}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $2`
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query worktree snapshots")
	}
	defer rows.Close()

	var snapshots []*model.WorktreeSnapshot
	for rows.Next() {
		var (
			snapshot model.WorktreeSnapshot
			id       string
			raw      []byte
		)
		if err := rows.Scan(&id, &snapshot.Root, &raw, &snapshot.TakenAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan worktree snapshot")
		}
		snapshot.ID = types.SnapshotID(id)
		if err := json.Unmarshal(raw, &snapshot.Worktrees); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal worktrees")
		}
		snapshots = append(snapshots, &snapshot)
	}

	return snapshots, rows.Err()
}

// Scan helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*model.Case, error) {
	var (
		c           model.Case
		id          string
		status      string
		branch      string
		issueNumber int
		pullRequest []byte
		commits     []byte
		checklist   []byte
		closedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &c.Repo.RepoID, &c.Repo.Owner, &c.Repo.RepoName,
		&c.Title, &issueNumber, &pullRequest,
		&status, &branch, &commits, &checklist, &c.ClosureSummary,
		&c.OpenedAt, &closedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.ID = types.CaseID(id)
	c.Status = types.CaseStatus(status)
	c.Branch = types.BranchName(branch)
	c.IssueNumber = types.IssueNumber(issueNumber)
	if closedAt.Valid {
		c.ClosedAt = closedAt.Time
	}

	if len(pullRequest) > 0 {
		var pr model.GitHubPullRequest
		if err := json.Unmarshal(pullRequest, &pr); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal pull request")
		}
		c.PullRequest = &pr
	}
	if err := json.Unmarshal(commits, &c.Commits); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal commits")
	}
	if err := json.Unmarshal(checklist, &c.Checklist); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal checklist")
	}

	return &c, nil
}

func scanFailure(row rowScanner) (*model.CIFailure, error) {
	var (
		failure    model.CIFailure
		runID      int64
		kind       string
		branch     string
		commitSHA  string
		conclusion string
		caseID     sql.NullString
	)

	err := row.Scan(
		&runID, &kind, &failure.Repo.RepoID, &failure.Repo.Owner, &failure.Repo.RepoName,
		&failure.WorkflowName, &branch, &commitSHA, &conclusion,
		&failure.URL, &failure.HeadMessage, &caseID, &failure.OccurredAt,
	)
	if err != nil {
		return nil, err
	}

	failure.RunID = types.WorkflowRunID(runID)
	failure.Kind = types.CIKind(kind)
	failure.Branch = types.BranchName(branch)
	failure.CommitSHA = types.CommitSHA(commitSHA)
	failure.Conclusion = types.CIConclusion(conclusion)
	if caseID.Valid {
		failure.CaseID = types.CaseID(caseID.String)
	}

	return &failure, nil
}

func marshalCaseFields(c *model.Case) (commits, checklist, pullRequest []byte, err error) {
	commits, err = json.Marshal(c.Commits)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to marshal commits")
	}
	checklist, err = json.Marshal(c.Checklist)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to marshal checklist")
	}
	if c.PullRequest != nil {
		pullRequest, err = json.Marshal(c.PullRequest)
		if err != nil {
			return nil, nil, nil, goerr.Wrap(err, "failed to marshal pull request")
		}
	}
	return commits, checklist, pullRequest, nil
}

func splitRepoID(repoID types.GitHubRepoID) (owner, name string, err error) {
	s := string(repoID)
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			return s[:i], s[i+1:], nil
		}
	}
	return "", "", goerr.Wrap(repository.ErrInvalidInput, "invalid repo ID", goerr.V("repoID", repoID))
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

