package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/altuslabsxyz/mirage/internal/infrastructure/history"
	"github.com/altuslabsxyz/mirage/internal/paths"
)

type historyOptions struct {
	limit    int
	jsonMode bool
}

func newHistoryCmd(g *globalOptions) *cobra.Command {
	o := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded reload cycles",
		Long: `List recorded reload cycles, newest first.

Examples:
  mirage history
  mirage history --limit 5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.execute(cmd, g)
		},
	}

	cmd.Flags().IntVarP(&o.limit, "limit", "n", 20, "Maximum number of cycles to show (0 for all)")
	cmd.Flags().BoolVar(&o.jsonMode, "json", false, "Output in JSON format")

	return cmd
}

func (o *historyOptions) execute(cmd *cobra.Command, g *globalOptions) error {
	out := cmd.OutOrStdout()

	dbPath := paths.HistoryPath(g.cfg.Home.Value)
	if !paths.IsFile(dbPath) {
		fmt.Fprintln(out, "No cycles recorded")
		return nil
	}

	store, err := history.NewBoltStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	cycles, err := store.List(cmd.Context(), o.limit)
	if err != nil {
		return err
	}

	if o.jsonMode {
		if cycles == nil {
			cycles = []history.Cycle{}
		}
		data, err := json.MarshalIndent(cycles, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(cycles) == 0 {
		fmt.Fprintln(out, "No cycles recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tPROFILE\tBUILDS\tOUTCOME\tMESSAGE")
	for _, c := range cycles {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			c.ID.String()[:8],
			c.StartedAt.Local().Format(time.DateTime),
			c.Duration().Round(time.Millisecond),
			c.Profile,
			c.Attempts,
			c.Outcome,
			firstLine(c.Message),
		)
	}
	return tw.Flush()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
