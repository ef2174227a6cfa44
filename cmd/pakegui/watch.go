package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/alfredjeanlab/pakegui/internal/events"
	"github.com/alfredjeanlab/pakegui/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [id]",
	Short: "Follow project and build events from the event bus",
	Long: `Follow project and build events published on the NATS event bus.

Builds started from any pakegui process connected to the same bus are shown
live, including their output. Give a project id to only follow that project.`,
	GroupID: "build",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.NATSURL == "" {
			return errors.New("no event bus configured (set nats_url or PAKEGUI_NATS_URL)")
		}
		var only string
		if len(args) == 1 {
			only = args[0]
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(cfg.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats: disconnected", "err", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				logger.Info("nats: reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(events.TopicAll)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return nil
			case msg, ok := <-ch:
				if !ok {
					return nil
				}
				ev, err := events.Decode(msg)
				if err != nil {
					logger.Debug("undecodable event", "topic", msg.Topic, "err", err)
					continue
				}
				if only != "" && eventProject(ev) != only {
					continue
				}
				if jsonOutput {
					printWatchJSON(msg)
					continue
				}
				if line := formatEvent(ev); line != "" {
					fmt.Println(line)
				}
			}
		}
	},
}

// eventProject returns the project id an event is about.
func eventProject(ev any) string {
	switch e := ev.(type) {
	case *events.ProjectSaved:
		if e.Project != nil {
			return e.Project.ID
		}
	case *events.ProjectDeleted:
		return e.ProjectID
	case *events.BuildStarted:
		return e.ProjectID
	case *events.BuildOutput:
		return e.ProjectID
	case *events.BuildFinished:
		return e.ProjectID
	}
	return ""
}

// formatEvent renders one decoded event as a terminal line.
func formatEvent(ev any) string {
	switch e := ev.(type) {
	case *events.ProjectSaved:
		if e.Project == nil {
			return ""
		}
		return ui.RenderMuted("saved ") + ui.RenderAccent(e.Project.ID)
	case *events.ProjectDeleted:
		return ui.RenderMuted("deleted ") + ui.RenderAccent(e.ProjectID)
	case *events.BuildStarted:
		return fmt.Sprintf("%s %s: pake %s", ui.RenderMuted("build started"), ui.RenderAccent(e.ProjectID), strings.Join(e.Args, " "))
	case *events.BuildOutput:
		return ui.RenderAccent(e.ProjectID) + " " + ui.RenderStream(e.Stream, e.Line)
	case *events.BuildFinished:
		if e.Error != "" {
			return fmt.Sprintf("%s %s: %s", ui.RenderError("build failed"), ui.RenderAccent(e.ProjectID), e.Error)
		}
		return ui.RenderOK("build finished") + " " + ui.RenderAccent(e.ProjectID)
	}
	return ""
}

func printWatchJSON(msg events.Message) {
	data, err := json.Marshal(struct {
		Topic string          `json:"topic"`
		Data  json.RawMessage `json:"data"`
	}{msg.Topic, msg.Data})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
