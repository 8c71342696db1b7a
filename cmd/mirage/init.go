package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/altuslabsxyz/mirage/internal/config"
	"github.com/altuslabsxyz/mirage/internal/output"
)

type initOptions struct {
	yes   bool
	force bool
	dir   string
}

func newInitCmd(g *globalOptions) *cobra.Command {
	o := &initOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a mirage.toml in the current directory",
		Long: `Create a mirage.toml project configuration file.

On a terminal the settings are asked for interactively; with --yes, or
when stdin is not a terminal, the effective configuration is written as is.

Examples:
  mirage init
  mirage init --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.execute(cmd, g)
		},
	}

	cmd.Flags().BoolVarP(&o.yes, "yes", "y", false, "Accept defaults without prompting")
	cmd.Flags().BoolVar(&o.force, "force", false, "Overwrite an existing mirage.toml")
	cmd.Flags().StringVar(&o.dir, "dir", ".", "Directory to write mirage.toml to")

	return cmd
}

func (o *initOptions) execute(cmd *cobra.Command, g *globalOptions) error {
	writer := config.NewConfigWriter(o.dir)
	if writer.Exists() && !o.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", writer.Path())
	}

	fc := defaultProjectConfig(g.cfg)
	if !o.yes && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := promptProjectConfig(fc); err != nil {
			return err
		}
	}

	if err := config.ValidateFileConfig(fc); err != nil {
		return err
	}
	if err := writer.Write(fc); err != nil {
		return err
	}

	output.DefaultLogger.Success("Wrote %s", writer.Path())
	return nil
}

// defaultProjectConfig seeds the project file from the effective
// configuration, leaving out machine-specific settings like home.
func defaultProjectConfig(cfg *config.EffectiveConfig) *config.FileConfig {
	str := func(s string) *string { return &s }
	interval := cfg.WatchInterval.Value.String()

	return &config.FileConfig{
		Profile:       str(cfg.Profile.Value),
		Loader:        str(cfg.Loader.Value),
		Package:       str(cfg.Package.Value),
		ArtifactName:  str(cfg.ArtifactName.Value),
		Symbol:        str(cfg.Symbol.Value),
		WatchPath:     str(cfg.WatchPath.Value),
		WatchMode:     str(cfg.WatchMode.Value),
		WatchInterval: &interval,
	}
}

func promptProjectConfig(fc *config.FileConfig) error {
	loader, err := selectOne("Loader", []string{"shared", "process"}, *fc.Loader)
	if err != nil {
		return err
	}
	fc.Loader = &loader

	for _, field := range []struct {
		label string
		dst   **string
	}{
		{"Package to build", &fc.Package},
		{"Artifact name", &fc.ArtifactName},
		{"Entry point symbol", &fc.Symbol},
		{"File to watch", &fc.WatchPath},
	} {
		value, err := promptString(field.label, **field.dst, nonEmpty)
		if err != nil {
			return err
		}
		*field.dst = &value
	}

	mode, err := selectOne("Watch mode", []string{"poll", "notify"}, *fc.WatchMode)
	if err != nil {
		return err
	}
	fc.WatchMode = &mode

	interval, err := promptString("Watch interval", *fc.WatchInterval, positiveDuration)
	if err != nil {
		return err
	}
	fc.WatchInterval = &interval

	return nil
}

func selectOne(label string, items []string, current string) (string, error) {
	cursor := 0
	for i, item := range items {
		if item == current {
			cursor = i
		}
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		CursorPos: cursor,
	}
	_, value, err := prompt.Run()
	return value, err
}

func promptString(label, def string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func nonEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

func positiveDuration(input string) error {
	d, err := time.ParseDuration(strings.TrimSpace(input))
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}
