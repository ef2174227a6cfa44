package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var argsCmd = &cobra.Command{
	Use:     "args <id>",
	Short:   "Print the pake-cli arguments for a project, one per line",
	GroupID: "build",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := reg.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tokens, err := newTranslator().Args(p.Config)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(tokens)
			return nil
		}
		for _, tok := range tokens {
			fmt.Println(tok)
		}
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:     "preview <id>",
	Short:   "Print the pake command line a build would run",
	GroupID: "build",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := reg.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(newTranslator().Preview(cfg.PakeBin, p.Config))
		return nil
	},
}
