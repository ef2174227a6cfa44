package main

import (
	"context"

	"github.com/alfredjeanlab/pakegui/internal/opener"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:     "open <path|id>",
	Short:   "Show a path, or a project's directory, in the file manager",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return opener.New().Open(resolveOpenTarget(cmd.Context(), args[0]))
	},
}

// resolveOpenTarget maps a project id to its directory. Anything else is
// opened as given.
func resolveOpenTarget(ctx context.Context, arg string) string {
	if _, err := reg.Load(ctx, arg); err == nil {
		return reg.PathOf(arg)
	}
	return arg
}
