package config

import (
	"log/slog"

	"github.com/caselog-dev/caselog/pkg/domain/types"
	"github.com/caselog-dev/caselog/pkg/infra/ghapp"
	"github.com/urfave/cli/v3"
)

type GitHubApp struct {
	id         types.GitHubAppID
	secret     types.GitHubAppSecret     `masq:"secret"`
	privateKey types.GitHubAppPrivateKey `masq:"secret"`
}

func (x *GitHubApp) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Category:    "GitHub App",
			Destination: (*int64)(&x.id),
			Sources:     cli.EnvVars("CASELOG_GITHUB_APP_ID"),
		},
		&cli.StringFlag{
			Name:        "github-app-private-key",
			Usage:       "GitHub App Private Key",
			Category:    "GitHub App",
			Destination: (*string)(&x.privateKey),
			Sources:     cli.EnvVars("CASELOG_GITHUB_APP_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-app-secret",
			Usage:       "GitHub App Webhook Secret",
			Category:    "GitHub App",
			Destination: (*string)(&x.secret),
			Sources:     cli.EnvVars("CASELOG_GITHUB_APP_SECRET"),
		},
	}
}

// Enabled is false when no App credential is given. The server then
// validates webhooks without posting comments back.
func (x GitHubApp) Enabled() bool {
	return x.id != 0 && x.privateKey != ""
}

func (x GitHubApp) New() (*ghapp.Client, error) {
	return ghapp.New(x.id, x.privateKey)
}

func (x GitHubApp) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("ID", int64(x.id)),
		slog.Int("Secret.len", len(x.secret)),
		slog.Int("privateKey.len", len(x.privateKey)),
	)
}

func (x GitHubApp) Secret() types.GitHubAppSecret {
	return x.secret
}
