package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caselog-dev/caselog/pkg/cli/config"
	"github.com/caselog-dev/caselog/pkg/controller/server"
	"github.com/caselog-dev/caselog/pkg/infra"
	"github.com/caselog-dev/caselog/pkg/usecase"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"

	"github.com/urfave/cli/v3"

	_ "github.com/lib/pq"
)

func serveCommand() *cli.Command {
	var (
		addr string

		githubApp   config.GitHubApp
		bigQuery    config.BigQuery
		sentry      config.Sentry
		postgres    config.Postgres
		redisConfig config.Redis
		policy      config.Policy
	)
	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("CASELOG_ADDR"),
			Destination: &addr,
		},
	}

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Server mode",
		Flags: slice.Flatten(
			serveFlags,
			githubApp.Flags(),
			bigQuery.Flags(),
			sentry.Flags(),
			postgres.Flags(),
			redisConfig.Flags(),
			policy.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("GitHubApp", githubApp),
				slog.Any("BigQuery", bigQuery),
				slog.Any("Sentry", sentry),
				slog.Any("Postgres", postgres),
				slog.Any("Redis", redisConfig),
				slog.Any("Policy", policy),
			)

			if err := sentry.Configure(ctx); err != nil {
				return err
			}

			repo, err := postgres.NewRepository()
			if err != nil {
				return err
			}

			infraOptions := []infra.Option{
				infra.WithCaseRepository(repo),
			}

			if githubApp.Enabled() {
				ghApp, err := githubApp.New()
				if err != nil {
					return err
				}
				infraOptions = append(infraOptions, infra.WithGitHubApp(ghApp))
			}

			if bqClient, err := bigQuery.NewClient(ctx); err != nil {
				return err
			} else if bqClient != nil {
				infraOptions = append(infraOptions, infra.WithBigQuery(bqClient))
			}

			if cache, err := redisConfig.NewCache(ctx); err != nil {
				return err
			} else if cache != nil {
				infraOptions = append(infraOptions, infra.WithDedupCache(cache))
			}

			if policyClient, err := policy.NewClient(); err != nil {
				return err
			} else if policyClient != nil {
				infraOptions = append(infraOptions, infra.WithPolicy(policyClient))
			}

			clients := infra.New(infraOptions...)

			uc := usecase.New(clients)
			s := server.New(uc, server.WithGitHubSecret(githubApp.Secret()))

			serverErr := make(chan error, 1)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: s.Mux(),

				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
			}

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}
			}

			return nil
		},
	}
}
