package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/mirage/internal/di"
	"github.com/altuslabsxyz/mirage/internal/output"
)

func newDoctorCmd(g *globalOptions) *cobra.Command {
	var jsonMode bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that artifacts can be built and loaded",
		Long: `Check the build tool and, for the shared loader, that the project's Go
toolchain matches the one mirage was built with and that cgo is enabled.

Examples:
  mirage doctor
  mirage doctor --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker, err := di.NewInfrastructureFactory(g.cfg, output.DefaultLogger).CreatePrereqChecker()
			if err != nil {
				return err
			}
			results, checkErr := checker.Check(cmd.Context())

			out := cmd.OutOrStdout()
			if jsonMode {
				data, err := json.MarshalIndent(results, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
				return checkErr
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CHECK\tSTATUS\tDETAILS")
			for _, r := range results {
				status := "ok"
				if !r.Found {
					status = "FAIL"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, status, r.Message)
			}
			tw.Flush()

			for _, r := range results {
				if !r.Found && r.Suggestion != "" {
					fmt.Fprintf(out, "\n%s: %s\n", r.Name, r.Suggestion)
				}
			}
			return checkErr
		},
	}

	cmd.Flags().BoolVar(&jsonMode, "json", false, "Output in JSON format")

	return cmd
}
