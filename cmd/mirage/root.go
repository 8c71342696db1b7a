package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/altuslabsxyz/mirage/internal/config"
	"github.com/altuslabsxyz/mirage/internal/output"
	"github.com/altuslabsxyz/mirage/internal/paths"
)

// globalOptions holds the persistent flags and the configuration resolved
// from them before any subcommand runs.
type globalOptions struct {
	homeDir    string
	configPath string
	noColor    bool
	verbose    bool
	release    bool

	cfg *config.EffectiveConfig
}

// NewRootCmd creates the root command with all subcommands registered.
// Running it without a subcommand starts the reload loop.
func NewRootCmd() *cobra.Command {
	g := &globalOptions{}
	run := &runOptions{}

	cmd := &cobra.Command{
		Use:   "mirage",
		Short: "Rebuild, reload and run a Go plugin on every change",
		Long: `mirage is a hot-reload supervisor for Go code.

It builds a project as a plugin, loads the artifact next to the mirage
executable, calls its entry point (DynFunc by default) and reports the result.
When the build fails it waits for the watched file to change and tries again.

Examples:
  # Build, load and run once; wait for changes on build failure
  mirage run --once

  # Keep reloading on every change to main.go
  mirage

  # Use the release profile
  mirage run --release

  # Show where each setting comes from
  mirage config show`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: g.persistentPreRunE,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.execute(cmd, g)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.homeDir, "home", "H", paths.DefaultHomeDir(),
		"Base directory for mirage data")
	cmd.PersistentFlags().StringVar(&g.configPath, "config", "",
		"Path to a config file (.toml, .yaml or .yml)")
	cmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false,
		"Disable colored output")
	cmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false,
		"Enable verbose logging")
	run.addFlags(cmd, g)

	cmd.AddCommand(
		newRunCmd(g),
		newInitCmd(g),
		newConfigCmd(g),
		newHistoryCmd(g),
		newDoctorCmd(g),
		newVersionCmd(),
	)

	return cmd
}

// persistentPreRunE resolves the effective configuration.
// Priority: default < config file < env < flag.
func (g *globalOptions) persistentPreRunE(cmd *cobra.Command, args []string) error {
	home := g.homeDir
	if v := os.Getenv("MIRAGE_HOME"); v != "" && !cmd.Flags().Changed("home") {
		home = v
	}

	loader := config.NewConfigLoader(home, g.configPath, output.DefaultLogger)
	fileCfg, configFilePath, err := loader.LoadFileConfig()
	if err != nil {
		return err
	}

	cfg := config.NewEffectiveConfig(paths.DefaultHomeDir())
	if err := cfg.ApplyFileConfig(fileCfg, configFilePath); err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	cfg.ApplyFlags(cmd, config.FlagValues{
		Home:    g.homeDir,
		NoColor: g.noColor,
		Verbose: g.verbose,
		Release: g.release,
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	noColor := cfg.NoColor.Value || !term.IsTerminal(int(os.Stdout.Fd()))
	if err := output.Init(output.Options{NoColor: noColor, Verbose: cfg.Verbose.Value}); errors.Is(err, output.ErrAlreadyInitialized) {
		output.DefaultLogger.Debug("Logger already initialized, keeping its settings")
	}

	if configFilePath != "" {
		output.DefaultLogger.Debug("Using config file: %s", configFilePath)
	}

	g.cfg = cfg
	return nil
}
