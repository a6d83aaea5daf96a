package cli

import (
	"github.com/caselog-dev/caselog/pkg/cli/config"
	"github.com/m-mizutani/goerr/v2"
)

func requirePostgres(cfg *config.Postgres) error {
	if !cfg.Enabled() {
		return goerr.New("PostgreSQL DSN is required for this command")
	}
	return nil
}
