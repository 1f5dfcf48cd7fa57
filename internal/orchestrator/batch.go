package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// #region batch

// AnalyzeBatch analyzes texts with at most workers in flight and returns
// results in input order. workers < 1 runs sequentially.
func (o *Orchestrator) AnalyzeBatch(ctx context.Context, texts []string, opts Options, workers int) []AnalysisResult {
	if workers < 1 {
		workers = 1
	}
	out := make([]AnalysisResult, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, text := range texts {
		g.Go(func() error {
			out[i] = o.Analyze(ctx, text, opts)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// #endregion
