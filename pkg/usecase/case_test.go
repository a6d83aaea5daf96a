package usecase_test

import (
	"context"
	"testing"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/gt"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
	"github.com/caselog-dev/caselog/pkg/domain/mock"
	"github.com/caselog-dev/caselog/pkg/domain/model"
	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/infra"
	"github.com/caselog-dev/caselog/pkg/repository/memory"
	"github.com/caselog-dev/caselog/pkg/usecase"
)

var testRepo = model.GitHubRepo{
	RepoID:   100,
	Owner:    "caselog-dev",
	RepoName: "caselog",
}

const testCommitID = "0123456789abcdef0123456789abcdef01234567"

func TestOpenAndCloseCase(t *testing.T) {
	ctx := context.Background()

	mockGH := &mock.GitHubAppMock{}
	mockBQ := &mock.BigQueryMock{}

	var inserted []any
	mockBQ.InsertFunc = func(ctx context.Context, schema bigquery.Schema, data any) error {
		inserted = append(inserted, data)
		return nil
	}

	uc := usecase.New(infra.New(
		infra.WithCaseRepository(memory.New()),
		infra.WithGitHubApp(mockGH),
		infra.WithBigQuery(mockBQ),
	))

	c := gt.R1(uc.OpenCase(ctx, &model.OpenCaseInput{
		Repo:        testRepo,
		Title:       "registry lookups time out under load",
		IssueNumber: 31,
		Branch:      "fix/registry-timeout",
	})).NoError(t)
	gt.V(t, c.Status).Equal(types.CaseStatusOpen)

	gt.NoError(t, uc.AttachCommit(ctx, &model.GitHubCommit{
		GitHubRepo: testRepo,
		CommitID:   testCommitID,
		Branch:     "fix/registry-timeout",
		Message:    "add lookup timeout",
	}))

	closed := gt.R1(uc.CloseCase(ctx, &model.CloseCaseInput{
		CaseID:    c.ID,
		Summary:   "Lookup timeout added, load test passes.",
		InstallID: 999,
	})).NoError(t)

	gt.V(t, closed.Status).Equal(types.CaseStatusClosed)
	gt.V(t, closed.ClosureSummary).Equal("Lookup timeout added, load test passes.")
	gt.A(t, closed.Commits).Length(1)

	t.Run("closure comment posted to issue", func(t *testing.T) {
		gt.A(t, mockGH.CreateIssueCommentCalls).Length(1)
		call := mockGH.CreateIssueCommentCalls[0]
		gt.V(t, call.Owner).Equal("caselog-dev")
		gt.V(t, call.Number).Equal(types.IssueNumber(31))
		gt.S(t, call.Body).Contains("# Case closed: registry lookups time out under load")
		gt.S(t, call.Body).Contains("add lookup timeout")
	})

	t.Run("closure record exported", func(t *testing.T) {
		gt.A(t, inserted).Length(1)
		record, ok := inserted[0].(*model.ClosureRawRecord)
		gt.True(t, ok)
		gt.V(t, record.CaseID).Equal(c.ID)
		gt.V(t, record.Commits).Equal(1)
	})

	t.Run("closing again fails", func(t *testing.T) {
		_, err := uc.CloseCase(ctx, &model.CloseCaseInput{CaseID: c.ID})
		gt.Error(t, err)
	})
}

func TestOpenCaseValidation(t *testing.T) {
	uc := usecase.New(infra.New(infra.WithCaseRepository(memory.New())))
	ctx := context.Background()

	t.Run("missing title", func(t *testing.T) {
		_, err := uc.OpenCase(ctx, &model.OpenCaseInput{Repo: testRepo})
		gt.Error(t, err)
	})

	t.Run("missing repo", func(t *testing.T) {
		_, err := uc.OpenCase(ctx, &model.OpenCaseInput{Title: "no repo"})
		gt.Error(t, err)
	})

	t.Run("missing title without issue lookup", func(t *testing.T) {
		_, err := uc.OpenCase(ctx, &model.OpenCaseInput{
			Repo:        testRepo,
			IssueNumber: 12,
		})
		gt.Error(t, err)
	})
}

func TestOpenCaseResolvesTitleFromIssue(t *testing.T) {
	ctx := context.Background()

	mockGH := &mock.GitHubAppMock{
		GetIssueFunc: func(ctx context.Context, input *interfaces.GetIssueInput) (*model.GitHubIssue, error) {
			gt.V(t, input.Owner).Equal(testRepo.Owner)
			gt.V(t, input.Number).Equal(types.IssueNumber(12))
			return &model.GitHubIssue{
				Number: input.Number,
				Title:  "registry lookups time out under load",
			}, nil
		},
	}
	uc := usecase.New(infra.New(
		infra.WithCaseRepository(memory.New()),
		infra.WithGitHubApp(mockGH),
	))

	c := gt.R1(uc.OpenCase(ctx, &model.OpenCaseInput{
		Repo:        testRepo,
		IssueNumber: 12,
		InstallID:   42,
	})).NoError(t)

	gt.V(t, c.Title).Equal("registry lookups time out under load")
	gt.V(t, c.Status).Equal(types.CaseStatusOpen)
}

func TestAttachCommitWithoutCase(t *testing.T) {
	// A push on an untracked branch is not an error
	uc := usecase.New(infra.New(infra.WithCaseRepository(memory.New())))

	gt.NoError(t, uc.AttachCommit(context.Background(), &model.GitHubCommit{
		GitHubRepo: testRepo,
		CommitID:   testCommitID,
		Branch:     "some/other-branch",
	}))
}

func TestAttachCommitDeduplicates(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(infra.New(infra.WithCaseRepository(memory.New())))

	c := gt.R1(uc.OpenCase(ctx, &model.OpenCaseInput{
		Repo:   testRepo,
		Title:  "dup commit test",
		Branch: "main",
	})).NoError(t)

	commit := &model.GitHubCommit{
		GitHubRepo: testRepo,
		CommitID:   testCommitID,
		Branch:     "main",
	}
	gt.NoError(t, uc.AttachCommit(ctx, commit))
	gt.NoError(t, uc.AttachCommit(ctx, commit))

	gotCase := gt.R1(uc.CloseCase(ctx, &model.CloseCaseInput{CaseID: c.ID})).NoError(t)
	gt.A(t, gotCase.Commits).Length(1)
}

func TestRecordIssueClosure(t *testing.T) {
	ctx := context.Background()

	t.Run("closes tracked case", func(t *testing.T) {
		repo := memory.New()
		mockGH := &mock.GitHubAppMock{}
		uc := usecase.New(infra.New(
			infra.WithCaseRepository(repo),
			infra.WithGitHubApp(mockGH),
		))

		c := gt.R1(uc.OpenCase(ctx, &model.OpenCaseInput{
			Repo:        testRepo,
			Title:       "tracked issue",
			IssueNumber: 55,
		})).NoError(t)

		gt.NoError(t, uc.RecordIssueClosure(ctx, &model.RecordIssueClosureInput{
			Meta: model.GitHubMetadata{
				GitHubCommit: model.GitHubCommit{GitHubRepo: testRepo},
				Issue: &model.GitHubIssue{
					Number: 55,
					Title:  "tracked issue",
				},
			},
			InstallID: 999,
		}))

		got := gt.R1(repo.GetCase(ctx, c.ID)).NoError(t)
		gt.V(t, got.Status).Equal(types.CaseStatusClosed)
		gt.A(t, mockGH.CreateIssueCommentCalls).Length(1)
		gt.S(t, mockGH.CreateIssueCommentCalls[0].Body).Contains("# Issue closed: tracked issue")
	})

	t.Run("creates closed case for untracked issue", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(infra.New(infra.WithCaseRepository(repo)))

		gt.NoError(t, uc.RecordIssueClosure(ctx, &model.RecordIssueClosureInput{
			Meta: model.GitHubMetadata{
				GitHubCommit: model.GitHubCommit{GitHubRepo: testRepo},
				Issue: &model.GitHubIssue{
					Number: 77,
					Title:  "untracked issue",
				},
			},
		}))

		c := gt.R1(repo.GetCaseByIssue(ctx, testRepo.ID(), 77)).NoError(t)
		gt.V(t, c.Status).Equal(types.CaseStatusClosed)
		gt.V(t, c.Title).Equal("untracked issue")
	})

	t.Run("double closure is ignored", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(infra.New(infra.WithCaseRepository(repo)))

		input := &model.RecordIssueClosureInput{
			Meta: model.GitHubMetadata{
				GitHubCommit: model.GitHubCommit{GitHubRepo: testRepo},
				Issue: &model.GitHubIssue{
					Number: 88,
					Title:  "closed twice",
				},
			},
		}
		gt.NoError(t, uc.RecordIssueClosure(ctx, input))
		gt.NoError(t, uc.RecordIssueClosure(ctx, input))

		cases := gt.R1(repo.ListCases(ctx, testRepo.ID(), types.CaseStatusClosed)).NoError(t)
		gt.A(t, cases).Length(1)
	})
}

func TestIngestNote(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	uc := usecase.New(infra.New(infra.WithCaseRepository(repo)))

	c := gt.R1(uc.OpenCase(ctx, &model.OpenCaseInput{
		Repo:  testRepo,
		Title: "note ingest test",
	})).NoError(t)

	note := []byte(`# Next steps

- [x] reproduce locally
- [ ] fix the race
- [ ] add regression test
`)

	items := gt.R1(uc.IngestNote(ctx, &model.IngestNoteInput{
		CaseID: c.ID,
		Source: "next-steps.md",
		Body:   note,
	})).NoError(t)
	gt.A(t, items).Length(3)

	got := gt.R1(repo.GetCase(ctx, c.ID)).NoError(t)
	gt.A(t, got.Checklist).Length(3)
	gt.V(t, got.Checklist[1].Text).Equal("fix the race")

	t.Run("rendered next steps show open items", func(t *testing.T) {
		doc := gt.R1(uc.RenderCase(ctx, c.ID)).NoError(t)
		gt.S(t, doc).Contains("[ ] fix the race")
		gt.S(t, doc).Contains("[x] reproduce locally")
	})

	t.Run("note without tasks fails", func(t *testing.T) {
		_, err := uc.IngestNote(ctx, &model.IngestNoteInput{
			CaseID: c.ID,
			Source: "prose.md",
			Body:   []byte("just prose"),
		})
		gt.Error(t, err)
	})

	t.Run("unknown case fails", func(t *testing.T) {
		_, err := uc.IngestNote(ctx, &model.IngestNoteInput{
			CaseID: types.NewCaseID(),
			Source: "next-steps.md",
			Body:   note,
		})
		gt.Error(t, err)
	})
}
