package config

import (
	"context"
	"log/slog"

	"github.com/caselog-dev/caselog/pkg/infra/rediscache"
	"github.com/urfave/cli/v3"
)

type Redis struct {
	addr     string
	password string `masq:"secret"`
	db       int
}

func (x *Redis) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address for webhook deduplication, e.g. localhost:6379",
			Category:    "Redis",
			Destination: &x.addr,
			Sources:     cli.EnvVars("CASELOG_REDIS_ADDR"),
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Redis",
			Destination: &x.password,
			Sources:     cli.EnvVars("CASELOG_REDIS_PASSWORD"),
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Redis",
			Destination: &x.db,
			Sources:     cli.EnvVars("CASELOG_REDIS_DB"),
		},
	}
}

// NewCache returns nil without error when Redis is not configured. The
// process-local cache is used instead.
func (x *Redis) NewCache(ctx context.Context) (*rediscache.Cache, error) {
	if x.addr == "" {
		return nil, nil
	}
	return rediscache.New(ctx, x.addr, x.password, x.db)
}

func (x *Redis) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("addr", x.addr),
		slog.Int("password.len", len(x.password)),
		slog.Int("db", x.db),
	)
}
