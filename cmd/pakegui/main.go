package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alfredjeanlab/pakegui/internal/build"
	"github.com/alfredjeanlab/pakegui/internal/config"
	"github.com/alfredjeanlab/pakegui/internal/events"
	"github.com/alfredjeanlab/pakegui/internal/registry"
	"github.com/alfredjeanlab/pakegui/internal/ui"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool

	cfg       *config.Config
	logger    *slog.Logger
	publisher events.Publisher
	reg       *registry.Registry
)

var rootCmd = &cobra.Command{
	Use:           "pakegui <command>",
	Short:         "Manage and build pake desktop app projects",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger = newLogger(cfg.LogLevel, verbose)
		ui.SetColor(!noColor && ui.ShouldUseColor(os.Stdout))

		publisher = &events.LogPublisher{Logger: logger}
		if cfg.NATSURL != "" {
			p, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				// The event bus is optional; local work continues without it.
				logger.Warn("event bus unavailable", "url", cfg.NATSURL, "err", err)
			} else {
				publisher = p
			}
		}

		policy := registry.ScanStrict
		if cfg.SkipMalformed {
			policy = registry.ScanSkipMalformed
		}
		reg, err = registry.New(cfg.Home,
			registry.WithScanPolicy(policy),
			registry.WithLogger(logger),
			registry.WithPublisher(publisher),
		)
		return err
	},
}

func newLogger(level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// newTranslator applies the configured pake-cli defaults.
func newTranslator() *build.Translator {
	return build.NewTranslator(build.Defaults{
		Width:   cfg.Defaults.Width,
		Height:  cfg.Defaults.Height,
		Targets: cfg.Defaults.Targets,
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "projects", Title: "Projects:"},
		&cobra.Group{ID: "build", Title: "Build:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Projects
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(pathCmd)

	// Build
	rootCmd.AddCommand(argsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(watchCmd)

	// System
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(syncCmd)
}

func main() {
	err := rootCmd.Execute()
	// Closing flushes events still buffered for the bus, also after a
	// failed build.
	if publisher != nil {
		publisher.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
