package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alfredjeanlab/pakegui/internal/build"
	"github.com/alfredjeanlab/pakegui/internal/model"
	"github.com/alfredjeanlab/pakegui/internal/ui"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <id>",
	Short: "Build a project's desktop app with pake-cli",
	Long: `Build a project's desktop app with pake-cli.

The project is saved first, which marks it as the most recently used. pake
runs inside the project directory and its output is relayed line by line,
tagged with the stream it came from. Interrupting the command stops pake.`,
	GroupID: "build",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := reg.Load(ctx, args[0])
		if err != nil {
			return err
		}
		if err := applyConfigFlags(cmd, &p.Config); err != nil {
			return err
		}
		if err := reg.Save(ctx, p); err != nil {
			return err
		}

		runner := build.NewRunner(reg, newTranslator(),
			build.WithBinary(cfg.PakeBin),
			build.WithLogger(logger),
			build.WithPublisher(publisher),
		)
		return runBuild(ctx, runner, p, os.Stdout)
	},
}

func init() {
	addConfigFlags(buildCmd)
}

// buildLine is the --json form of one relayed event.
type buildLine struct {
	Stream   string `json:"stream,omitempty"`
	Line     string `json:"line,omitempty"`
	Done     bool   `json:"done,omitempty"`
	ExitCode *int   `json:"exit_code,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runBuild(ctx context.Context, runner *build.Runner, p *model.Project, out *os.File) error {
	enc := json.NewEncoder(out)
	return runner.Run(ctx, p.ID, p.Config, func(ev build.Event) {
		if jsonOutput {
			enc.Encode(toBuildLine(ev)) //nolint:errcheck
			return
		}
		if ev.Done {
			if ev.Err == nil {
				fmt.Fprintln(out, ui.RenderOK("Built "+p.ID))
			}
			return
		}
		fmt.Fprintln(out, ui.RenderStream(string(ev.Stream), ev.Line))
	})
}

func toBuildLine(ev build.Event) buildLine {
	if !ev.Done {
		return buildLine{Stream: string(ev.Stream), Line: ev.Line}
	}
	bl := buildLine{Done: true}
	code := 0
	if ev.Err != nil {
		bl.Error = ev.Err.Error()
		var me *model.Error
		if errors.As(ev.Err, &me) {
			code = me.ExitCode
		}
	}
	bl.ExitCode = &code
	return bl
}
