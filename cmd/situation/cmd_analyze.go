package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haqei/situation-engine/internal/orchestrator"
)

// #region analyze

type analyzeOptions struct {
	locale       string
	workers      int
	skipFeatures bool
	pretty       bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze text given as arguments or one situation per stdin line",
		Long: `Analyze joins its arguments into one situation. Without arguments it reads
stdin and analyzes every non-empty line, writing one JSON result per line in
input order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, root, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.locale, "locale", "", "Output locale (en, ja); empty uses the configured locale")
	f.IntVar(&opts.workers, "workers", 4, "Concurrent analyses for multi-line input")
	f.BoolVar(&opts.skipFeatures, "skip-features", false, "Do not call the feature vectorizer")
	f.BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	return cmd
}

func runAnalyze(cmd *cobra.Command, root *rootOptions, opts *analyzeOptions, args []string) error {
	texts, err := readInputs(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("analyze: no input text")
	}

	a, err := newApp(root)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.pipeline(cmd.Context(), nil)
	if err != nil {
		return err
	}
	results := p.orch.AnalyzeBatch(cmd.Context(), texts, orchestrator.Options{
		Locale:       opts.locale,
		SkipFeatures: opts.skipFeatures,
	}, opts.workers)

	enc := json.NewEncoder(cmd.OutOrStdout())
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	failed := 0
	for _, res := range results {
		if !res.OK {
			failed++
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("analyze: %d of %d analyses failed", failed, len(results))
	}
	return nil
}

// readInputs returns the joined arguments, or the non-empty stdin lines
// when there are none.
func readInputs(r io.Reader, args []string) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}
	var texts []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return texts, nil
}

// #endregion analyze
