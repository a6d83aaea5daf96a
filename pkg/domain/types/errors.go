package types

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidOption     = goerr.New("invalid option")
	ErrValidationFailed  = goerr.New("validation failed")
	ErrInvalidGitHubData = goerr.New("invalid GitHub data")
	ErrCaseAlreadyClosed = goerr.New("case is already closed")
	ErrInvalidNote       = goerr.New("invalid note document")
)
