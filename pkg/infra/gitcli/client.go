package gitcli

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
)

// Client wraps the git CLI. Worktree operations need full git
// compatibility, so the binary is invoked instead of a Go git library.
type Client struct {
	gitPath string
}

var _ interfaces.GitClient = (*Client)(nil)

func New(gitPath string) *Client {
	return &Client{gitPath: gitPath}
}

func (x *Client) run(ctx context.Context, repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204: args are built internally, not from user input
	cmd := exec.CommandContext(ctx, x.gitPath, fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", goerr.Wrap(err, "git command failed",
			goerr.V("args", args),
			goerr.V("repoPath", repoPath),
			goerr.V("stderr", strings.TrimSpace(stderr.String())),
		)
	}

	return stdout.String(), nil
}

// ListWorktrees parses `git worktree list --porcelain` output. Entries
// whose directory no longer exists are flagged Missing.
func (x *Client) ListWorktrees(ctx context.Context, repoPath string) ([]model.Worktree, error) {
	output, err := x.run(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}

	worktrees := ParsePorcelain(output)
	for i := range worktrees {
		if _, err := os.Stat(worktrees[i].Path); os.IsNotExist(err) {
			worktrees[i].Missing = true
		}
	}

	return worktrees, nil
}

// IsDirty reports whether `git status --porcelain` shows any change.
func (x *Client) IsDirty(ctx context.Context, worktreePath string) (bool, error) {
	output, err := x.run(ctx, worktreePath, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// ParsePorcelain parses `git worktree list --porcelain` output. Blocks
// are separated by blank lines; each line is a key-value pair, with
// standalone markers such as "bare" and "detached".
func ParsePorcelain(output string) []model.Worktree {
	var worktrees []model.Worktree

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *model.Worktree
	for _, line := range lines {
		if line == "" {
			if current != nil {
				worktrees = append(worktrees, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")
		switch key {
		case "worktree":
			current = &model.Worktree{Path: value}
		case "HEAD":
			if current != nil {
				current.Head = types.CommitSHA(value)
			}
		case "branch":
			if current != nil {
				current.Branch = types.BranchName(strings.TrimPrefix(value, "refs/heads/"))
			}
		case "bare":
			if current != nil {
				current.Bare = true
			}
			// detached HEAD entries simply have an empty Branch
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}

	return worktrees
}
