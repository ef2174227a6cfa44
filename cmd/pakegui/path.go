package main

import (
	"errors"
	"fmt"

	"github.com/alfredjeanlab/pakegui/internal/model"
	"github.com/spf13/cobra"
)

var pathCmd = &cobra.Command{
	Use:     "path <id>",
	Short:   "Print a project's directory, config file or built app",
	GroupID: "projects",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		configFile, _ := cmd.Flags().GetBool("config")
		output, _ := cmd.Flags().GetBool("output")
		if configFile && output {
			return errors.New("--config and --output are mutually exclusive")
		}
		if err := model.ValidateID(id); err != nil {
			return err
		}

		switch {
		case configFile:
			fmt.Println(reg.ConfigPathOf(id))
		case output:
			path, err := reg.OutputPath(cmd.Context(), id)
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("no built app found for %s", id)
			}
			fmt.Println(path)
		default:
			fmt.Println(reg.PathOf(id))
		}
		return nil
	},
}

func init() {
	pathCmd.Flags().Bool("config", false, "print the project's config file path")
	pathCmd.Flags().Bool("output", false, "print the path of the built app, if any")
}
