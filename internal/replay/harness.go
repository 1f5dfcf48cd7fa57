package replay

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/haqei/situation-engine/internal/catalog"
	"github.com/haqei/situation-engine/internal/eval"
	"github.com/haqei/situation-engine/internal/orchestrator"
)

// #region types

// Factory builds a fresh orchestrator with empty usage history.
type Factory func() *orchestrator.Orchestrator

// CaseResult is the outcome of one replayed case.
type CaseResult struct {
	ID         string            `json:"id"`
	Expected   catalog.Archetype `json:"expected,omitempty"`
	Predicted  catalog.Archetype `json:"predicted"`
	Confidence float64           `json:"confidence"`
	PrimaryID  int               `json:"primaryId"`
	OK         bool              `json:"ok"`
}

// Report is the output of a calibration replay.
type Report struct {
	Description string          `json:"description"`
	Matrix      []CaseResult    `json:"matrix"`
	Labeled     []CaseResult    `json:"labeled"`
	Eval        eval.EvalResult `json:"eval"`
}

// #endregion types

// #region replay

// Replay runs the matrix and the labeled cases through separate fresh
// orchestrators, each in fixture order, and evaluates the combined
// observations. Labels only come from labeled cases.
func Replay(ctx context.Context, f *Fixture, factory Factory, cfg eval.EvalConfig) (Report, error) {
	matrix := f.Matrix.Expand()
	report := Report{Description: f.Description}

	var matrixObs, labeledObs []eval.Observation
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report.Matrix, matrixObs, err = replayCases(ctx, factory(), matrix)
		return err
	})
	g.Go(func() error {
		var err error
		report.Labeled, labeledObs, err = replayCases(ctx, factory(), f.Labeled)
		return err
	})
	if err := g.Wait(); err != nil {
		return report, err
	}

	obs := append(matrixObs, labeledObs...)
	report.Eval = eval.NewEvalHarness(cfg).Run(obs)
	return report, nil
}

// replayCases analyzes cases sequentially so usage history follows
// fixture order.
func replayCases(ctx context.Context, o *orchestrator.Orchestrator, cases []Case) ([]CaseResult, []eval.Observation, error) {
	results := make([]CaseResult, 0, len(cases))
	obs := make([]eval.Observation, 0, len(cases))
	for _, c := range cases {
		res := o.Analyze(ctx, c.Text, orchestrator.Options{SkipFeatures: true})
		if !res.OK {
			return results, obs, fmt.Errorf("replay case %s: %s", c.ID, res.Error)
		}
		sig := res.Situation
		results = append(results, CaseResult{
			ID:         c.ID,
			Expected:   c.Expected,
			Predicted:  sig.Archetype.Primary,
			Confidence: sig.Confidence.Value,
			PrimaryID:  res.Mapping.Primary.Record.ID,
			OK:         res.OK,
		})
		alts := make([]int, 0, len(res.Mapping.Alternatives))
		for _, a := range res.Mapping.Alternatives {
			alts = append(alts, a.Record.ID)
		}
		obs = append(obs, eval.Observation{
			Expected:     c.Expected,
			Predicted:    sig.Archetype.Primary,
			Confidence:   sig.Confidence.Value,
			PrimaryID:    res.Mapping.Primary.Record.ID,
			Alternatives: alts,
		})
	}
	return results, obs, nil
}

// #endregion replay
