// Package build turns a project's BuildConfig into a pake-cli invocation and
// runs it, relaying the tool's output line by line.
package build

import (
	"strconv"
	"strings"

	"github.com/alfredjeanlab/pakegui/internal/model"
)

// pake-cli's own defaults. Options equal to these are not passed.
const (
	DefaultWidth   uint64 = 1200
	DefaultHeight  uint64 = 780
	DefaultTargets        = "all"
)

// Defaults are the option values the translator suppresses.
type Defaults struct {
	Width   uint64
	Height  uint64
	Targets string
}

// StandardDefaults returns pake-cli's built-in defaults.
func StandardDefaults() Defaults {
	return Defaults{Width: DefaultWidth, Height: DefaultHeight, Targets: DefaultTargets}
}

// Translator maps a BuildConfig to pake-cli arguments.
type Translator struct {
	defaults Defaults
}

// NewTranslator returns a translator that suppresses options equal to d.
func NewTranslator(d Defaults) *Translator {
	return &Translator{defaults: d}
}

// Defaults returns the defaults the translator was built with.
func (t *Translator) Defaults() Defaults {
	return t.defaults
}

// Args returns the argument list for cfg, source first. The source is
// required; every other option is emitted only when set and not default.
// Flag order is fixed so the output is reproducible.
func (t *Translator) Args(cfg model.BuildConfig) ([]string, error) {
	if cfg.URL == nil || strings.TrimSpace(*cfg.URL) == "" {
		return nil, model.Validation("translate", "", model.KeyURL, "is required")
	}

	args := []string{*cfg.URL}
	str := func(flag string, v *string) {
		if v != nil && *v != "" {
			args = append(args, flag, *v)
		}
	}
	flag := func(name string, v *bool) {
		if v != nil && *v {
			args = append(args, name)
		}
	}
	dim := func(name string, v *uint64, def uint64) {
		if v != nil && *v != def {
			args = append(args, name, strconv.FormatUint(*v, 10))
		}
	}

	str("--name", cfg.Name)
	str("--icon", cfg.Icon)
	dim("--width", cfg.Width, t.defaults.Width)
	dim("--height", cfg.Height, t.defaults.Height)
	flag("--use-local-file", cfg.UseLocalFile)
	flag("--fullscreen", cfg.Fullscreen)
	flag("--hide-title-bar", cfg.HideTitleBar)
	flag("--multi-arch", cfg.MultiArch)
	flag("--debug", cfg.Debug)
	str("--activation-shortcut", cfg.ActivationShortcut)
	flag("--always-on-top", cfg.AlwaysOnTop)
	if cfg.Targets != nil && *cfg.Targets != "" && *cfg.Targets != t.defaults.Targets {
		args = append(args, "--targets", *cfg.Targets)
	}
	str("--user-agent", cfg.UserAgent)
	flag("--show-system-tray", cfg.ShowSystemTray)
	str("--system-tray-icon", cfg.SystemTrayIcon)
	for _, f := range cfg.Inject {
		args = append(args, "--inject", f)
	}
	for _, d := range cfg.SafeDomain {
		args = append(args, "--safe-domain", d)
	}
	return args, nil
}
