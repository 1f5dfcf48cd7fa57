package orchestrator

// #region imports
import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/haqei/situation-engine/internal/catalog"
	"github.com/haqei/situation-engine/internal/features"
	"github.com/haqei/situation-engine/internal/logging"
	"github.com/haqei/situation-engine/internal/ranker"
	"github.com/haqei/situation-engine/internal/situation"
)

// #endregion

var tracer = otel.Tracer("github.com/haqei/situation-engine/internal/orchestrator")

// Warnings attached to degraded but successful results.
const (
	warnFeatures    = "Auxiliary text features were unavailable; the reading does not depend on them."
	warnSynthesized = "No reference pattern could be matched, so a general reading is shown."
)

// #region orchestrator-struct

// Deps are the collaborators of an Orchestrator. Nil fields get defaults.
type Deps struct {
	Classifier Classifier
	Ranker     Ranker
	Extractor  *features.Extractor
	Sink       Sink
	Metrics    *Metrics
	Logger     *zap.Logger
}

// Orchestrator chains feature extraction, classification and ranking.
type Orchestrator struct {
	classifier Classifier
	ranker     Ranker
	extractor  *features.Extractor
	sink       Sink
	metrics    *Metrics
	logger     *zap.Logger
	cfg        Config
	retry      *RetryPolicy
	history    *History
	stats      statsTracker
	now        func() time.Time
}

// #endregion

// #region constructor

// New creates an orchestrator. A nil classifier uses the built-in lexicon,
// a nil ranker ranks the embedded catalog, a nil extractor hashes locally,
// and nil metrics are created unregistered.
func New(deps Deps, cfg Config) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Classifier == nil {
		deps.Classifier = situation.NewClassifier(nil)
	}
	if deps.Ranker == nil {
		deps.Ranker = ranker.New(catalog.Default(), nil, nil, ranker.DefaultConfig(), logger.Named("ranker"))
	}
	if deps.Extractor == nil {
		deps.Extractor = features.NewExtractor(nil, features.DefaultExtractorConfig())
	}
	if deps.Metrics == nil {
		deps.Metrics = NewMetrics(nil)
	}
	if cfg.FeatureTimeout <= 0 {
		cfg.FeatureTimeout = DefaultConfig().FeatureTimeout
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = DefaultConfig().HistorySize
	}
	return &Orchestrator{
		classifier: deps.Classifier,
		ranker:     deps.Ranker,
		extractor:  deps.Extractor,
		sink:       deps.Sink,
		metrics:    deps.Metrics,
		logger:     logger.Named("orchestrator"),
		cfg:        cfg,
		retry:      NewRetryPolicy(cfg.MaxRetries, cfg.RetryBackoff),
		history:    NewHistory(cfg.HistorySize),
		now:        time.Now,
	}
}

// #endregion

// #region accessors

// Stats returns the rolling performance metrics.
func (o *Orchestrator) Stats() PerformanceStats { return o.stats.snapshot() }

// History returns recent successful analyses, oldest first.
func (o *Orchestrator) History() []HistoryEntry { return o.history.Entries() }

// #endregion

// #region analyze

// Analyze runs the full pipeline on text. It never returns an error: a
// failed analysis has OK false, Error set and a stand-in mapping.
// Cancelling ctx drops the analysis without recording usage.
func (o *Orchestrator) Analyze(ctx context.Context, text string, opts Options) AnalysisResult {
	start := o.now()
	locale := opts.Locale
	if locale == "" {
		locale = o.cfg.Locale
	}

	ctx, span := tracer.Start(ctx, "orchestrator.Analyze", trace.WithAttributes(
		attribute.Int("situation.input_runes", utf8.RuneCountInString(text)),
		attribute.String("situation.locale", locale),
	))
	defer span.End()

	res := o.run(ctx, text, locale, opts)
	res.ID = uuid.NewString()
	res.Timestamp = start.UTC()
	res.InputLength = utf8.RuneCountInString(text)
	res.ProcessingMs = float64(o.now().Sub(start).Microseconds()) / 1000

	o.finish(span, res)
	return res
}

func (o *Orchestrator) run(ctx context.Context, text, locale string, opts Options) AnalysisResult {
	var res AnalysisResult

	if !opts.SkipFeatures {
		f, err := o.extractFeatures(ctx, text)
		if ctx.Err() != nil {
			return o.failed(locale, PhaseFeatures, true, msgCancelled, ctx.Err())
		}
		if err != nil {
			o.metrics.featureFailures.Inc()
			o.logger.Warn("features unavailable", zap.Error(err))
			res.Warnings = append(res.Warnings, warnFeatures)
		} else {
			res.Features = &f
		}
	}

	sig, err := o.classify(ctx, text)
	if err != nil {
		return o.failed(locale, PhaseClassify, false, msgClassify, err)
	}

	mapping, err := o.plan(ctx, sig, locale)
	switch {
	case ranker.IsNoCandidates(err):
		res.Warnings = append(res.Warnings, warnSynthesized)
	case err != nil:
		return o.failed(locale, PhaseRank, false, msgRank, err)
	}
	if ctx.Err() != nil {
		return o.failed(locale, PhaseRank, true, msgCancelled, ctx.Err())
	}
	o.ranker.Commit(mapping)

	res.OK = true
	res.Situation = &sig
	res.Mapping = mapping
	res.Confidence = aggregateConfidence(sig.Confidence.Value, mapping.Confidence)
	return res
}

// aggregateConfidence blends situation and mapping confidence 40/60.
func aggregateConfidence(situationConf, mappingConf float64) float64 {
	return situationConf*0.4 + mappingConf*0.6
}

// #endregion

// #region phases

func (o *Orchestrator) extractFeatures(ctx context.Context, text string) (features.Features, error) {
	ctx, span := tracer.Start(ctx, "orchestrator.features", trace.WithAttributes(
		attribute.String("situation.vectorizer", o.extractor.Source()),
	))
	defer span.End()

	var (
		f   features.Features
		err error
	)
	for attempt := 1; ; attempt++ {
		f, err = o.extractOnce(ctx, text)
		if err == nil {
			span.SetAttributes(attribute.Int("situation.feature_attempts", attempt))
			return f, nil
		}
		if ctx.Err() != nil || !o.retry.ShouldRetry(attempt, err) {
			break
		}
		o.logger.Debug("retrying vectorizer", zap.Int("attempt", attempt), zap.Error(err))
		if !sleep(ctx, o.retry.Delay(attempt)) {
			break
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "features unavailable")
	return f, err
}

// extractOnce bounds a single vectorizer call by the feature timeout, even
// when the vectorizer ignores its context.
func (o *Orchestrator) extractOnce(ctx context.Context, text string) (features.Features, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.FeatureTimeout)
	defer cancel()

	type outcome struct {
		f   features.Features
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		f, err := o.extractor.Extract(ctx, text)
		done <- outcome{f, err}
	}()
	select {
	case out := <-done:
		return out.f, out.err
	case <-ctx.Done():
		return features.Features{}, fmt.Errorf("extract features: %w", ctx.Err())
	}
}

func (o *Orchestrator) classify(ctx context.Context, text string) (sig situation.Signal, err error) {
	_, span := tracer.Start(ctx, "orchestrator.classify")
	defer span.End()
	defer recoverPhase(PhaseClassify, &err)

	sig = o.classifier.Classify(text)
	span.SetAttributes(
		attribute.String("situation.archetype", string(sig.Archetype.Primary)),
		attribute.Float64("situation.confidence", sig.Confidence.Value),
	)
	return sig, nil
}

func (o *Orchestrator) plan(ctx context.Context, sig situation.Signal, locale string) (res ranker.MappingResult, err error) {
	_, span := tracer.Start(ctx, "orchestrator.rank")
	defer span.End()
	defer recoverPhase(PhaseRank, &err)

	res, err = o.ranker.Plan(sig, locale)
	span.SetAttributes(
		attribute.Int("situation.primary", res.Primary.Record.ID),
		attribute.Int("situation.level", res.Fallback.Level),
	)
	if err != nil {
		span.RecordError(err)
	}
	return res, err
}

// recoverPhase turns a panic into an error.
func recoverPhase(phase Phase, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%s panicked: %v", phase, r)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// #endregion

// #region failure

// failed builds the error result. The cause is logged, never returned.
func (o *Orchestrator) failed(locale string, phase Phase, retryable bool, msg string, cause error) AnalysisResult {
	level := zap.ErrorLevel
	if errors.Is(cause, context.Canceled) || errors.Is(cause, context.DeadlineExceeded) {
		level = zap.InfoLevel
	}
	o.logger.Log(level, "analysis failed",
		zap.String("phase", string(phase)),
		zap.Bool("retryable", retryable),
		zap.Error(cause))

	return AnalysisResult{
		Mapping: o.minimal(locale),
		Error:   &PipelineError{Phase: phase, Retryable: retryable, Message: msg},
	}
}

// minimal returns the stand-in mapping, or a bare default if the ranker
// itself is broken.
func (o *Orchestrator) minimal(locale string) (res ranker.MappingResult) {
	defer func() {
		if r := recover(); r != nil {
			res = ranker.MappingResult{
				Primary:    ranker.Candidate{Record: catalog.DefaultRecord()},
				Line:       ranker.LinePosition{Index: 1},
				Confidence: 0.3,
				Metadata:   ranker.Metadata{Synthesized: true},
			}
		}
	}()
	return o.ranker.Minimal(locale)
}

// #endregion

// #region finish

func (o *Orchestrator) finish(span trace.Span, res AnalysisResult) {
	o.metrics.observe(res)

	entry := logging.AnalysisEntry{
		ID:            res.ID,
		OK:            res.OK,
		PrimaryID:     res.Mapping.Primary.Record.ID,
		Line:          res.Mapping.Line.Index,
		Confidence:    res.Confidence,
		FallbackLevel: res.Mapping.Fallback.Level,
		InputRunes:    res.InputLength,
		DurationMs:    res.ProcessingMs,
		CreatedAt:     res.Timestamp,
	}

	if res.OK {
		archetype := string(res.Situation.Archetype.Primary)
		entry.Archetype = archetype
		o.stats.success(res.Confidence, res.ProcessingMs, res.Timestamp)
		o.history.Add(HistoryEntry{
			ID:         res.ID,
			Timestamp:  res.Timestamp,
			Archetype:  archetype,
			PrimaryID:  entry.PrimaryID,
			Line:       entry.Line,
			Confidence: res.Confidence,
			DurationMs: res.ProcessingMs,
		})
		span.SetAttributes(attribute.Float64("situation.aggregate_confidence", res.Confidence))
		o.logger.Info("analysis complete",
			zap.String("id", res.ID),
			zap.String("archetype", archetype),
			zap.Int("primary", entry.PrimaryID),
			zap.Float64("confidence", res.Confidence),
			zap.Float64("duration_ms", res.ProcessingMs))
	} else {
		entry.Phase = string(res.Error.Phase)
		entry.Error = res.Error.Message
		o.stats.failure()
		span.SetStatus(codes.Error, res.Error.Message)
		o.logger.Warn("analysis returned error result",
			zap.String("id", res.ID),
			zap.String("phase", entry.Phase),
			zap.Bool("retryable", res.Error.Retryable))
	}

	if o.sink != nil {
		if err := o.sink.LogAnalysis(entry); err != nil {
			o.logger.Warn("analysis log write failed", zap.Error(err))
		}
	}
}

// #endregion
