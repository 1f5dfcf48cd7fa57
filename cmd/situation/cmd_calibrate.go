package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/haqei/situation-engine/internal/eval"
	"github.com/haqei/situation-engine/internal/orchestrator"
	"github.com/haqei/situation-engine/internal/ranker"
	"github.com/haqei/situation-engine/internal/replay"
)

// #region calibrate

type calibrateOptions struct {
	fixture  string
	jsonOut  bool
	showCase bool
}

func newCalibrateCmd(root *rootOptions) *cobra.Command {
	opts := &calibrateOptions{}
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Replay the calibration corpus and check distribution and confidence metrics",
		Long: `Calibrate replays a labeled corpus through fresh pipelines and reports the
archetype balance (chi-square), catalog coverage, top-10 share, Gini and the
confidence/accuracy correlation. It exits non-zero when a check fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalibrate(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.fixture, "fixture", "", "Path to a calibration fixture (default: bundled corpus)")
	f.BoolVar(&opts.jsonOut, "json", false, "Output the full report as JSON")
	f.BoolVar(&opts.showCase, "cases", false, "List labeled case outcomes")
	return cmd
}

func runCalibrate(cmd *cobra.Command, root *rootOptions, opts *calibrateOptions) error {
	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	fx := replay.DefaultFixture()
	if opts.fixture != "" {
		if fx, err = replay.LoadFixture(opts.fixture); err != nil {
			return err
		}
	}
	cat, err := a.loadCatalog(cmd.Context())
	if err != nil {
		a.logger.Warn("calibrating against fallback records", zap.Error(err))
	}

	factory := func() *orchestrator.Orchestrator {
		rk := ranker.New(cat, nil, nil, a.cfg.Ranker, nil)
		return orchestrator.New(orchestrator.Deps{Ranker: rk}, a.cfg.Orchestrator())
	}
	report, err := replay.Replay(cmd.Context(), fx, factory, eval.DefaultEvalConfig())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	} else {
		printReport(out, report, opts.showCase)
	}
	if !report.Eval.Passed {
		return fmt.Errorf("calibration failed: %s", report.Eval.Reason)
	}
	return nil
}

func printReport(w io.Writer, r replay.Report, showCases bool) {
	fmt.Fprintf(w, "%s\n", r.Description)
	fmt.Fprintf(w, "cases: %d matrix, %d labeled\n\n", len(r.Matrix), len(r.Labeled))
	fmt.Fprintf(w, "%-34s  %10s  %10s  %s\n", "Metric", "Value", "Threshold", "Result")
	fmt.Fprintf(w, "%-34s+-%10s+-%10s+-%s\n", "----------------------------------", "----------", "----------", "------")
	for _, m := range r.Eval.Metrics {
		result := "pass"
		if !m.Pass {
			result = "FAIL"
		}
		if m.Detail != "" {
			result += "  " + m.Detail
		}
		fmt.Fprintf(w, "%-34s  %10.4f  %10.4f  %s\n", m.Name, m.Value, m.Threshold, result)
	}
	if showCases {
		fmt.Fprintf(w, "\n%-14s  %-15s  %-15s  %6s  %s\n", "Case", "Expected", "Predicted", "Conf", "Record")
		for _, c := range r.Labeled {
			mark := ""
			if c.Expected != c.Predicted {
				mark = "  *"
			}
			fmt.Fprintf(w, "%-14s  %-15s  %-15s  %6.3f  %d%s\n", c.ID, c.Expected, c.Predicted, c.Confidence, c.PrimaryID, mark)
		}
	}
	fmt.Fprintf(w, "\n%s\n", r.Eval.Reason)
}

// #endregion calibrate
