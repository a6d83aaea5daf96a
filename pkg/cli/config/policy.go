package config

import (
	"log/slog"

	"github.com/caselog-dev/caselog/pkg/infra/policy"
	"github.com/urfave/cli/v3"
)

type Policy struct {
	dir string
}

func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-dir",
			Usage:       "Directory of Rego policies for CI failure filtering",
			Category:    "Policy",
			Destination: &x.dir,
			Sources:     cli.EnvVars("CASELOG_POLICY_DIR"),
		},
	}
}

// NewClient returns nil without error when no policy directory is
// given. All CI failures are then recorded.
func (x *Policy) NewClient() (*policy.Client, error) {
	if x.dir == "" {
		return nil, nil
	}
	return policy.New(x.dir)
}

func (x *Policy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("dir", x.dir),
	)
}
