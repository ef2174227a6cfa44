package main

import (
	"fmt"

	"github.com/alfredjeanlab/pakegui/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show or change settings",
	GroupID: "system",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			printJSON(cfg)
			return nil
		}
		fmt.Printf("home:             %s\n", cfg.Home)
		fmt.Printf("settings file:    %s\n", cfg.Path())
		fmt.Printf("pake_bin:         %s\n", cfg.PakeBin)
		fmt.Printf("log_level:        %s\n", cfg.LogLevel)
		fmt.Printf("skip_malformed:   %t\n", cfg.SkipMalformed)
		fmt.Printf("name_pattern:     %s\n", cfg.NamePattern)
		fmt.Printf("nats_url:         %s\n", cfg.NATSURL)
		fmt.Printf("sync.interval:    %s\n", cfg.Sync.Interval)
		fmt.Printf("sync.s3_bucket:   %s\n", cfg.Sync.S3Bucket)
		fmt.Printf("sync.s3_endpoint: %s\n", cfg.Sync.S3Endpoint)
		fmt.Printf("sync.s3_region:   %s\n", cfg.Sync.S3Region)
		fmt.Printf("sync.s3_key:      %s\n", cfg.Sync.S3Key)
		fmt.Printf("sync.git_repo:    %s\n", cfg.Sync.GitRepo)
		fmt.Printf("sync.git_file:    %s\n", cfg.Sync.GitFile)
		fmt.Printf("sync.git_branch:  %s\n", cfg.Sync.GitBranch)
		fmt.Printf("defaults.width:   %d\n", cfg.Defaults.Width)
		fmt.Printf("defaults.height:  %d\n", cfg.Defaults.Height)
		fmt.Printf("defaults.targets: %s\n", cfg.Defaults.Targets)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting in the settings file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		fileCfg, err := config.LoadFile(cfg.Home)
		if err != nil {
			return err
		}
		if err := fileCfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := fileCfg.Save(); err != nil {
			return fmt.Errorf("writing %s: %w", fileCfg.Path(), err)
		}
		fmt.Printf("Set %s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
