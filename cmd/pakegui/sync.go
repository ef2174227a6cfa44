package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alfredjeanlab/pakegui/internal/config"
	pgsync "github.com/alfredjeanlab/pakegui/internal/sync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Back up all projects to the configured S3 bucket or git repo",
	Long: `Back up all projects as JSONL to the configured destinations.

Destinations are enabled by sync.s3_bucket and sync.git_repo (or the
PAKEGUI_SYNC_* variables). With an interval the command keeps running and
syncs on every tick until interrupted.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		interval := cfg.Sync.Interval.Duration
		if cmd.Flags().Changed("interval") {
			interval, _ = cmd.Flags().GetDuration("interval")
		}

		dests, err := syncDestinations(ctx, cfg.Sync)
		if err != nil {
			return err
		}
		if len(dests) == 0 {
			return errors.New("no sync destination configured (set sync.s3_bucket or sync.git_repo)")
		}

		sched := pgsync.NewScheduler(reg, dests, interval, logger)
		if interval <= 0 {
			if err := sched.SyncOnce(ctx); err != nil {
				return err
			}
			fmt.Printf("Synced to %d destination(s)\n", len(dests))
			return nil
		}

		sched.Start()
		<-ctx.Done()
		sched.Stop()
		return nil
	},
}

func syncDestinations(ctx context.Context, s config.Sync) ([]pgsync.Destination, error) {
	var dests []pgsync.Destination
	if s.S3Bucket != "" {
		d, err := pgsync.NewS3Destination(ctx, pgsync.S3Options{
			Bucket:   s.S3Bucket,
			Key:      s.S3Key,
			Region:   s.S3Region,
			Endpoint: s.S3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		dests = append(dests, d)
	}
	if s.GitRepo != "" {
		dests = append(dests, pgsync.NewGitDestination(s.GitRepo, s.GitFile, s.GitBranch))
	}
	return dests, nil
}

func init() {
	syncCmd.Flags().Duration("interval", 0, "sync periodically at this interval (default: settings value, 0 = once)")
}
