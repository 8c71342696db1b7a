package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect mirage configuration",
	}
	cmd.AddCommand(newConfigShowCmd(g))
	return cmd
}

func newConfigShowCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current effective configuration",
		Long: `Display the current effective configuration with sources.

Shows all configuration values and where they came from:
  - default: Built-in default value
  - config file: Value from config.toml, mirage.toml or --config
  - environment: Value from environment variable
  - flag: Value from command-line flag

Examples:
  mirage config show
  mirage config show --release`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			g.cfg.ToTable(out)

			if g.cfg.ConfigFilePath != "" {
				fmt.Fprintf(out, "\nConfig file: %s\n", g.cfg.ConfigFilePath)
			} else {
				fmt.Fprintln(out, "\nNo config file loaded")
			}
			return nil
		},
	}
}
