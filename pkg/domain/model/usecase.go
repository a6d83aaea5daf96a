package model

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/caselog-dev/caselog/pkg/domain/types"
)

type OpenCaseInput struct {
	Repo        GitHubRepo
	Title       string
	IssueNumber types.IssueNumber
	Branch      types.BranchName
	InstallID   types.GitHubAppInstallID
}

func (x *OpenCaseInput) Validate() error {
	if err := x.Repo.ValidateBasic(); err != nil {
		return err
	}
	if x.Title == "" && x.IssueNumber == 0 {
		return goerr.Wrap(types.ErrValidationFailed, "either title or issue number is required")
	}
	return nil
}

type CloseCaseInput struct {
	CaseID    types.CaseID
	Summary   string
	InstallID types.GitHubAppInstallID
}

func (x *CloseCaseInput) Validate() error {
	if x.CaseID == "" {
		return goerr.Wrap(types.ErrInvalidOption, "case ID is empty")
	}
	return nil
}

type RecordIssueClosureInput struct {
	Meta      GitHubMetadata
	InstallID types.GitHubAppInstallID
}

func (x *RecordIssueClosureInput) Validate() error {
	if err := x.Meta.ValidateBasic(); err != nil {
		return err
	}
	if x.Meta.Issue == nil {
		return goerr.Wrap(types.ErrValidationFailed, "issue is empty")
	}
	if x.Meta.Issue.Number == 0 {
		return goerr.Wrap(types.ErrValidationFailed, "issue number is empty")
	}
	return nil
}

type RecordCIFailureInput struct {
	Failure   CIFailure
	InstallID types.GitHubAppInstallID
}

func (x *RecordCIFailureInput) Validate() error {
	return x.Failure.Validate()
}

type IngestNoteInput struct {
	CaseID types.CaseID
	Source string
	Body   []byte
}

func (x *IngestNoteInput) Validate() error {
	if x.CaseID == "" {
		return goerr.Wrap(types.ErrInvalidOption, "case ID is empty")
	}
	if len(x.Body) == 0 {
		return goerr.Wrap(types.ErrInvalidNote, "note body is empty", goerr.V("source", x.Source))
	}
	return nil
}
