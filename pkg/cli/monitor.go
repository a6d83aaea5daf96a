package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caselog-dev/caselog/pkg/cli/config"
	"github.com/caselog-dev/caselog/pkg/infra"
	"github.com/caselog-dev/caselog/pkg/report"
	"github.com/caselog-dev/caselog/pkg/usecase"
	"github.com/caselog-dev/caselog/pkg/utils/logging"
	"github.com/caselog-dev/caselog/pkg/utils/safe"
	"github.com/fsnotify/fsnotify"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"

	"github.com/urfave/cli/v3"

	_ "github.com/lib/pq"
)

func monitorCommand() *cli.Command {
	var (
		configPath string
		roots      []string
		watch      bool
		interval   time.Duration

		postgres config.Postgres
	)

	monitorFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML monitor config",
			Sources:     cli.EnvVars("CASELOG_MONITOR_CONFIG"),
			Destination: &configPath,
		},
		&cli.StringSliceFlag{
			Name:        "root",
			Aliases:     []string{"r"},
			Usage:       "Repository root to monitor (repeatable)",
			Destination: &roots,
		},
		&cli.BoolFlag{
			Name:        "watch",
			Aliases:     []string{"w"},
			Usage:       "Keep running and re-snapshot on filesystem changes",
			Destination: &watch,
		},
		&cli.DurationFlag{
			Name:        "interval",
			Usage:       "Snapshot interval in watch mode",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("CASELOG_MONITOR_INTERVAL"),
			Destination: &interval,
		},
	}

	return &cli.Command{
		Name:    "monitor",
		Aliases: []string{"m"},
		Usage:   "Snapshot the state of git worktrees under repository roots",
		Flags: slice.Flatten(
			monitorFlags,
			postgres.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			if configPath != "" {
				cfg, err := config.LoadMonitor(configPath)
				if err != nil {
					return err
				}
				roots = append(roots, cfg.Roots...)
				if !c.IsSet("interval") {
					interval = cfg.Interval
				}
			}
			if len(roots) == 0 {
				return goerr.New("no worktree roots given, use --root or --config")
			}

			repo, err := postgres.NewRepository()
			if err != nil {
				return err
			}

			uc := usecase.New(infra.New(infra.WithCaseRepository(repo)))

			if err := runMonitorOnce(ctx, uc, roots); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			return watchWorktrees(ctx, uc, roots, interval)
		},
	}
}

func runMonitorOnce(ctx context.Context, uc *usecase.UseCase, roots []string) error {
	snapshots, err := uc.MonitorWorktrees(ctx, roots)
	if err != nil {
		return err
	}

	for _, snapshot := range snapshots {
		doc, err := report.WorktreeNote(snapshot)
		if err != nil {
			return err
		}
		fmt.Println(doc)
	}

	return nil
}

// watchWorktrees re-snapshots on filesystem changes under the roots,
// and on a fixed interval as fallback for changes the watcher misses.
func watchWorktrees(ctx context.Context, uc *usecase.UseCase, roots []string, interval time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return goerr.Wrap(err, "failed to create filesystem watcher")
	}
	defer safe.Close(watcher)

	for _, root := range roots {
		if err := watcher.Add(root); err != nil {
			return goerr.Wrap(err, "failed to watch root", goerr.V("root", root))
		}
	}

	logging.From(ctx).Info("watching worktree roots",
		slog.Any("roots", roots),
		slog.Duration("interval", interval),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Events burst during git operations, so snapshots are debounced
	var debounce <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce = time.After(2 * time.Second)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.From(ctx).Warn("filesystem watcher error", slog.Any("error", err))

		case <-debounce:
			debounce = nil
			if err := runMonitorOnce(ctx, uc, roots); err != nil {
				logging.From(ctx).Error("failed to snapshot worktrees", slog.Any("error", err))
			}

		case <-ticker.C:
			if err := runMonitorOnce(ctx, uc, roots); err != nil {
				logging.From(ctx).Error("failed to snapshot worktrees", slog.Any("error", err))
			}

		case sig := <-quit:
			logging.From(ctx).Info("stopping worktree watch", slog.Any("signal", sig))
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
