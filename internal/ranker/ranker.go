package ranker

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/haqei/situation-engine/internal/catalog"
	"github.com/haqei/situation-engine/internal/situation"
	"github.com/haqei/situation-engine/internal/usage"
)

// #region usage-store

// UsageStore is the usage state a ranker reads and updates.
type UsageStore interface {
	Snapshot() usage.Snapshot
	Record(id int)
}

// #endregion usage-store

// #region ranker

// synthesizedConfidence is reported when the default record stands in for
// an empty candidate set.
const synthesizedConfidence = 0.3

// Ranker selects catalog records for situation signals.
type Ranker struct {
	catalog     *catalog.Catalog
	degradation *Degradation
	usage       UsageStore
	cfg         Config
	logger      *zap.Logger
}

// New creates a ranker. A nil catalog selects the fallback catalog, nil
// degradation starts at full quality, nil usage starts empty and a nil
// logger discards output.
func New(cat *catalog.Catalog, deg *Degradation, u UsageStore, cfg Config, logger *zap.Logger) *Ranker {
	if cat == nil {
		cat = catalog.Fallback()
	}
	if deg == nil {
		deg = NewDegradation()
	}
	if u == nil {
		u = usage.NewStatistics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, ok := templateSets[cfg.Locale]; !ok {
		cfg.Locale = LocaleEN
	}
	return &Ranker{catalog: cat, degradation: deg, usage: u, cfg: cfg, logger: logger}
}

// Degradation returns the controller this ranker reads.
func (r *Ranker) Degradation() *Degradation { return r.degradation }

// Usage returns the usage store this ranker updates.
func (r *Ranker) Usage() UsageStore { return r.usage }

// Catalog returns the catalog this ranker draws from.
func (r *Ranker) Catalog() *catalog.Catalog { return r.catalog }

// Rank plans a result and commits its usage. It always returns a usable
// result.
func (r *Ranker) Rank(sig situation.Signal, locale string) MappingResult {
	res, _ := r.Plan(sig, locale)
	r.Commit(res)
	return res
}

// Plan ranks sig against the current degradation level and a snapshot of
// usage without changing any state. The error is non-nil only when no
// record could be scored and the default record was synthesized.
func (r *Ranker) Plan(sig situation.Signal, locale string) (MappingResult, error) {
	if locale == "" {
		locale = r.cfg.Locale
	}
	state := r.degradation.State()
	level := effectiveLevel(state.Level, r.catalog.Len())
	records := r.catalog.Subset(level)

	res, err := Evaluate(sig, records, r.usage.Snapshot(), r.cfg, locale)
	res.Fallback = fallbackInfo(templatesOrDefault(res.Metadata.Locale), state, level, r.catalog.IsFallback())
	res.Metadata.QualityLevel = res.Fallback.QualityLevel

	if err != nil {
		r.logger.Warn("skipped catalog records",
			zap.Int("skipped", res.Metadata.Skipped),
			zap.Int("candidates", res.Metadata.Candidates),
			zap.Error(err))
		if res.Metadata.Synthesized {
			return res, err
		}
	}
	return res, nil
}

// Commit records the primary pick of res in usage state. Synthesized
// results are not counted.
func (r *Ranker) Commit(res MappingResult) {
	if res.Metadata.Synthesized {
		return
	}
	r.usage.Record(res.Primary.Record.ID)
}

// Minimal returns the stand-in result used when an analysis fails: the
// default record on the first line at the synthesized confidence.
func (r *Ranker) Minimal(locale string) MappingResult {
	if locale == "" {
		locale = r.cfg.Locale
	}
	t, locale := TemplatesFor(locale)
	rec := catalog.DefaultRecord()
	state := r.degradation.State()
	level := effectiveLevel(state.Level, r.catalog.Len())
	label, essence := recordText(locale, rec)

	res := MappingResult{
		Primary:      Candidate{Record: rec},
		Alternatives: []Candidate{},
		Line: LinePosition{
			Index:   1,
			Name:    t.LineNames[0],
			Meaning: t.LineMeanings[0],
			Weight:  positionWeights[0],
			Score:   positionWeights[0],
		},
		Interpretation: Interpretation{
			SituationText: fill(t.DefaultSituation, "{label}", label, "{essence}", essence),
			Guidance:      []string{},
			Warnings:      []string{},
			Opportunities: []string{},
			Timing:        Timing{Kind: TimingSteady, Advice: t.Timing[TimingSteady]},
		},
		Confidence: synthesizedConfidence,
		Fallback:   fallbackInfo(t, state, level, r.catalog.IsFallback()),
		Metadata:   Metadata{Synthesized: true, Locale: locale},
	}
	res.Metadata.QualityLevel = res.Fallback.QualityLevel
	return res
}

// #endregion ranker

// #region evaluate

// Evaluate is the pure ranking function over an explicit record set and
// usage snapshot. The returned error joins per-record faults; the result
// is always usable, with the default record synthesized when nothing
// scores. Fallback info is left for the caller to fill in.
func Evaluate(sig situation.Signal, records []catalog.Record, snap usage.Snapshot, cfg Config, locale string) (MappingResult, error) {
	t, locale := TemplatesFor(locale)

	scored, faults := scoreAll(sig, records, snap, cfg)
	meta := Metadata{
		Candidates: len(scored),
		Skipped:    len(records) - len(scored),
		Locale:     locale,
	}

	line := linePosition(t, sig, cfg)
	if len(scored) == 0 {
		rec := catalog.DefaultRecord()
		meta.Synthesized = true
		err := ErrNoCandidates
		if faults != nil {
			err = fmt.Errorf("%w: %w", ErrNoCandidates, faults)
		}
		return MappingResult{
			Primary:        Candidate{Record: rec},
			Alternatives:   []Candidate{},
			Line:           line,
			Interpretation: interpret(t, locale, sig, rec, line, cfg.UrgencyThreshold),
			Confidence:     synthesizedConfidence,
			Metadata:       meta,
		}, err
	}

	primary := scored[0]
	alts := make([]Candidate, 0, 2)
	for i := 1; i < len(scored) && len(alts) < 2; i++ {
		alts = append(alts, scored[i])
	}

	return MappingResult{
		Primary:        primary,
		Alternatives:   alts,
		Line:           line,
		Interpretation: interpret(t, locale, sig, primary.Record, line, cfg.UrgencyThreshold),
		Confidence:     mappingConfidence(sig, primary),
		Metadata:       meta,
	}, faults
}

func templatesOrDefault(locale string) *Templates {
	t, _ := TemplatesFor(locale)
	return t
}

// IsNoCandidates reports whether err came from an empty candidate set.
func IsNoCandidates(err error) bool { return errors.Is(err, ErrNoCandidates) }

// #endregion evaluate
