package policy

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/opac"

	"github.com/caselog-dev/caselog/pkg/domain/interfaces"
)

// Client evaluates local Rego policy files with opac.
type Client struct {
	opac opac.Client
}

var _ interfaces.Policy = (*Client)(nil)

func New(policyDir string) (*Client, error) {
	client, err := opac.NewLocal(opac.WithDir(policyDir), opac.WithPackage("caselog"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load policy", goerr.V("dir", policyDir))
	}

	return &Client{opac: client}, nil
}

func (x *Client) Query(ctx context.Context, input any, out any) error {
	if err := x.opac.Query(ctx, input, out); err != nil {
		return goerr.Wrap(err, "failed to query policy")
	}
	return nil
}
