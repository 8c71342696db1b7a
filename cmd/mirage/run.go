package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/mirage/internal/di"
	"github.com/altuslabsxyz/mirage/internal/output"
)

type runOptions struct {
	once       bool
	skipChecks bool
}

func (o *runOptions) addFlags(cmd *cobra.Command, g *globalOptions) {
	cmd.Flags().BoolVar(&o.once, "once", false,
		"Run a single reload cycle and exit")
	cmd.Flags().BoolVar(&g.release, "release", false,
		"Build with the release profile")
	cmd.Flags().BoolVar(&o.skipChecks, "skip-checks", false,
		"Skip the build tool and toolchain checks")
}

func newRunCmd(g *globalOptions) *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build, load and run the entry point",
		Long: `Build the project, load the artifact and call its entry point.

A failed build is reported with the tool's output, then mirage waits for
the watched file to change and builds again. A failing entry point is
reported and the cycle ends normally. Without --once, mirage starts a new
cycle every time the watched file changes.

Examples:
  mirage run
  mirage run --once --release`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.execute(cmd, g)
		},
	}
	o.addFlags(cmd, g)

	return cmd
}

func (o *runOptions) execute(cmd *cobra.Command, g *globalOptions) error {
	logger := output.DefaultLogger
	ctx := cmd.Context()
	factory := di.NewInfrastructureFactory(g.cfg, logger)

	if !o.skipChecks {
		checker, err := factory.CreatePrereqChecker()
		if err != nil {
			return err
		}
		results, err := checker.Check(ctx)
		for _, r := range results {
			logger.Debug("%s: %s", r.Name, r.Message)
		}
		if err != nil {
			return fmt.Errorf("%w (run 'mirage doctor' for details)", err)
		}
	}

	driver, cleanup, err := factory.CreateDriver()
	if err != nil {
		return err
	}
	defer cleanup()

	if o.once {
		err = driver.RunOnce(ctx)
	} else {
		err = driver.Run(ctx)
	}

	if errors.Is(err, context.Canceled) {
		logger.Info("Interrupted")
		return nil
	}
	return err
}
