package main

import (
	"fmt"
	"strings"

	"github.com/alfredjeanlab/pakegui/internal/env"
	"github.com/spf13/cobra"
)

var envCmd = &cobra.Command{
	Use:     "env",
	Short:   "Check that the tools pake-cli needs are installed",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		checker := env.NewChecker(logger)
		for i, p := range checker.Probes {
			if p.Tool == env.ToolPake {
				checker.Probes[i].Binary = cfg.PakeBin
			}
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		checker.Timeout = timeout

		results := checker.CheckAll(cmd.Context())
		if jsonOutput {
			printJSON(results)
		} else {
			printEnvTable(results)
		}

		if ok, missing := envReady(results); !ok {
			return fmt.Errorf("missing or broken: %s", strings.Join(missing, ", "))
		}
		return nil
	},
}

func init() {
	envCmd.Flags().Duration("timeout", env.DefaultTimeout, "timeout for each version command")
}
