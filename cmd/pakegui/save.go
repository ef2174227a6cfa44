package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alfredjeanlab/pakegui/internal/idgen"
	"github.com/alfredjeanlab/pakegui/internal/model"
	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save [flags]",
	Short: "Create or update a project",
	Long: `Create or update a project.

With --id naming an existing project, the stored options are loaded and the
given flags are applied on top. Without --id a new project is created and
named by the configured naming pattern.

--from reads a project record (the format of tauri.conf.json) to start from.`,
	GroupID: "projects",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		id, _ := cmd.Flags().GetString("id")
		from, _ := cmd.Flags().GetString("from")
		title, _ := cmd.Flags().GetString("title")

		p := &model.Project{}
		switch {
		case from != "":
			data, err := os.ReadFile(from)
			if err != nil {
				return fmt.Errorf("reading %s: %w", from, err)
			}
			if err := json.Unmarshal(data, p); err != nil {
				return fmt.Errorf("parsing %s: %w", from, err)
			}
			if id != "" {
				p.ID = id
			}
		case id != "":
			existing, err := reg.Load(ctx, id)
			switch {
			case err == nil:
				p = existing
			case errors.Is(err, model.ErrNotFound):
				p.ID = id
			default:
				return err
			}
		}

		if err := applyConfigFlags(cmd, &p.Config); err != nil {
			return err
		}
		if title != "" {
			p.Name = title
		}
		if p.Name == "" && p.Config.Name != nil {
			p.Name = *p.Config.Name
		}

		if p.ID == "" {
			newID, err := newProjectID(cmd, p.Name)
			if err != nil {
				return err
			}
			p.ID = newID
		}
		if p.Name == "" {
			p.Name = p.ID
		}

		if err := reg.Save(ctx, p); err != nil {
			return err
		}
		if jsonOutput {
			printJSON(p)
		} else {
			fmt.Printf("Saved %s\n", p.ID)
		}
		return nil
	},
}

// newProjectID names a new project by the configured pattern, falling back
// to a random id when the pattern's result is already taken.
func newProjectID(cmd *cobra.Command, name string) (string, error) {
	id := idgen.FromPattern(cfg.NamePattern, name, time.Now())
	if _, err := reg.Load(cmd.Context(), id); errors.Is(err, model.ErrNotFound) {
		return id, nil
	}
	return idgen.Generate()
}

func init() {
	saveCmd.Flags().String("id", "", "project id (default: generated from the naming pattern)")
	saveCmd.Flags().String("from", "", "start from a project record file")
	saveCmd.Flags().String("title", "", "display name of the project")
	addConfigFlags(saveCmd)
}

// addConfigFlags registers one flag per build option, named like the
// pake-cli flag it becomes.
func addConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("url", "", "web address or local file to package")
	f.String("name", "", "application name")
	f.String("icon", "", "application icon")
	f.Uint64("width", 0, "window width")
	f.Uint64("height", 0, "window height")
	f.Bool("use-local-file", false, "package a local HTML file")
	f.Bool("fullscreen", false, "start in full screen")
	f.Bool("hide-title-bar", false, "hide the window title bar")
	f.Bool("multi-arch", false, "build a universal binary (macOS)")
	f.Bool("debug", false, "build with debugging enabled")
	f.String("activation-shortcut", "", "global shortcut that shows the app")
	f.Bool("always-on-top", false, "keep the window above others")
	f.String("targets", "", "installer targets")
	f.String("user-agent", "", "custom user agent")
	f.Bool("show-system-tray", false, "show a system tray icon")
	f.String("system-tray-icon", "", "system tray icon")
	f.StringArray("inject", nil, "CSS or JS file to inject (repeatable)")
	f.StringArray("safe-domain", nil, "additional trusted domain (repeatable)")
	f.StringArray("unset", nil, "remove a stored option by its key, e.g. userAgent (repeatable)")
}

// applyConfigFlags copies every flag that was set on the command line into
// c. Flags left at their defaults do not touch c.
func applyConfigFlags(cmd *cobra.Command, c *model.BuildConfig) error {
	f := cmd.Flags()
	str := func(name string, dst **string) {
		if f.Changed(name) {
			v, _ := f.GetString(name)
			*dst = &v
		}
	}
	boolean := func(name string, dst **bool) {
		if f.Changed(name) {
			v, _ := f.GetBool(name)
			*dst = &v
		}
	}
	number := func(name string, dst **uint64) {
		if f.Changed(name) {
			v, _ := f.GetUint64(name)
			*dst = &v
		}
	}
	list := func(name string, dst *[]string) {
		if f.Changed(name) {
			v, _ := f.GetStringArray(name)
			*dst = v
		}
	}

	unset, _ := f.GetStringArray("unset")
	for _, key := range unset {
		if err := unsetOption(c, key); err != nil {
			return err
		}
	}

	str("url", &c.URL)
	str("name", &c.Name)
	str("icon", &c.Icon)
	number("width", &c.Width)
	number("height", &c.Height)
	boolean("use-local-file", &c.UseLocalFile)
	boolean("fullscreen", &c.Fullscreen)
	boolean("hide-title-bar", &c.HideTitleBar)
	boolean("multi-arch", &c.MultiArch)
	boolean("debug", &c.Debug)
	str("activation-shortcut", &c.ActivationShortcut)
	boolean("always-on-top", &c.AlwaysOnTop)
	str("targets", &c.Targets)
	str("user-agent", &c.UserAgent)
	boolean("show-system-tray", &c.ShowSystemTray)
	str("system-tray-icon", &c.SystemTrayIcon)
	list("inject", &c.Inject)
	list("safe-domain", &c.SafeDomain)
	return nil
}

// unsetOption removes the option stored under key, typed or not.
func unsetOption(c *model.BuildConfig, key string) error {
	_, inExtra := c.Extra[key]
	delete(c.Extra, key)
	switch key {
	case model.KeyURL:
		c.URL = nil
	case model.KeyName:
		c.Name = nil
	case model.KeyIcon:
		c.Icon = nil
	case model.KeyWidth:
		c.Width = nil
	case model.KeyHeight:
		c.Height = nil
	case model.KeyUseLocalFile:
		c.UseLocalFile = nil
	case model.KeyFullscreen:
		c.Fullscreen = nil
	case model.KeyHideTitleBar:
		c.HideTitleBar = nil
	case model.KeyMultiArch:
		c.MultiArch = nil
	case model.KeyDebug:
		c.Debug = nil
	case model.KeyActivationShortcut:
		c.ActivationShortcut = nil
	case model.KeyAlwaysOnTop:
		c.AlwaysOnTop = nil
	case model.KeyTargets:
		c.Targets = nil
	case model.KeyUserAgent:
		c.UserAgent = nil
	case model.KeyShowSystemTray:
		c.ShowSystemTray = nil
	case model.KeySystemTrayIcon:
		c.SystemTrayIcon = nil
	case model.KeyInject:
		c.Inject = nil
	case model.KeySafeDomain:
		c.SafeDomain = nil
	default:
		if !inExtra {
			return fmt.Errorf("unknown option %q", strings.TrimSpace(key))
		}
	}
	return nil
}
