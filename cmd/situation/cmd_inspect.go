package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/haqei/situation-engine/internal/logging"
)

// #region inspect

type inspectOptions struct {
	last    int
	jsonOut bool
}

func newInspectCmd(root *rootOptions) *cobra.Command {
	opts := &inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List recent rows of the analysis log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.Close()

			alog, err := a.analysisLog()
			if err != nil {
				return err
			}
			if alog == nil {
				return fmt.Errorf("inspect: no database configured (set db_path or --db)")
			}
			rows, err := alog.Recent(cmd.Context(), opts.last)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			printEntries(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.last, "last", 20, "Show N most recent rows")
	f.BoolVar(&opts.jsonOut, "json", false, "Output as JSON instead of table")
	return cmd
}

func printEntries(w io.Writer, rows []logging.AnalysisEntry) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "no analyses logged")
		return
	}
	fmt.Fprintf(w, "%-12s  %-4s  %-15s  %6s  %4s  %6s  %5s  %9s  %s\n",
		"ID", "OK", "Archetype", "Record", "Line", "Conf", "Level", "Ms", "Time")
	for _, r := range rows {
		status := "ok"
		archetype := r.Archetype
		if !r.OK {
			status = "err"
			archetype = r.Phase
		}
		fmt.Fprintf(w, "%-12s  %-4s  %-15s  %6d  %4d  %6.3f  %5d  %9.2f  %s\n",
			shortID(r.ID), status, archetype, r.PrimaryID, r.Line, r.Confidence,
			r.FallbackLevel, r.DurationMs, r.CreatedAt.Format(time.RFC3339))
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion inspect
