package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/haqei/situation-engine/internal/catalog"
	"github.com/haqei/situation-engine/internal/features"
	"github.com/haqei/situation-engine/internal/logging"
	"github.com/haqei/situation-engine/internal/ranker"
	"github.com/haqei/situation-engine/internal/situation"
	"github.com/haqei/situation-engine/internal/usage"
)

const quittingText = "I'm quitting everything to start a completely new life. I want to finally be free, even though I'm scared."

// #region mock

// blockingVectorizer waits for its context, or for release when it ignores
// the context.
type blockingVectorizer struct {
	calls     atomic.Int32
	ignoreCtx bool
	release   chan struct{}
}

func (b *blockingVectorizer) Vectorize(ctx context.Context, _ string) ([]float32, error) {
	b.calls.Add(1)
	if b.ignoreCtx {
		<-b.release
		return nil, errors.New("released")
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingVectorizer) Name() string { return "blocking" }

type failingVectorizer struct {
	calls atomic.Int32
	err   error
}

func (f *failingVectorizer) Vectorize(context.Context, string) ([]float32, error) {
	f.calls.Add(1)
	return nil, f.err
}

func (f *failingVectorizer) Name() string { return "failing" }

type panickingClassifier struct{}

func (panickingClassifier) Classify(string) situation.Signal { panic("lexicon corrupted") }

// stubRanker delegates to a real ranker unless told to misbehave.
type stubRanker struct {
	*ranker.Ranker
	panicPlan    bool
	panicMinimal bool
	synthesize   bool
	commits      int
}

func (s *stubRanker) Plan(sig situation.Signal, locale string) (ranker.MappingResult, error) {
	if s.panicPlan {
		panic("index out of range")
	}
	if s.synthesize {
		res, _ := ranker.Evaluate(sig, nil, usage.Snapshot{}, ranker.DefaultConfig(), locale)
		return res, ranker.ErrNoCandidates
	}
	return s.Ranker.Plan(sig, locale)
}

func (s *stubRanker) Commit(res ranker.MappingResult) {
	s.commits++
	s.Ranker.Commit(res)
}

func (s *stubRanker) Minimal(locale string) ranker.MappingResult {
	if s.panicMinimal {
		panic("minimal broken")
	}
	return s.Ranker.Minimal(locale)
}

type memorySink struct {
	entries []logging.AnalysisEntry
	err     error
}

func (m *memorySink) LogAnalysis(e logging.AnalysisEntry) error {
	m.entries = append(m.entries, e)
	return m.err
}

// #endregion mock

// #region helpers
func newRanker() *ranker.Ranker {
	return ranker.New(catalog.Default(), nil, usage.NewStatistics(), ranker.DefaultConfig(), nil)
}

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.FeatureTimeout = 20 * time.Millisecond
	cfg.RetryBackoff = time.Millisecond
	return cfg
}

func hasWarning(res AnalysisResult, w string) bool {
	for _, s := range res.Warnings {
		if s == w {
			return true
		}
	}
	return false
}

// #endregion helpers

// #region analyze-tests
func TestAnalyze_Success(t *testing.T) {
	r := newRanker()
	o := New(Deps{Ranker: r}, DefaultConfig())

	res := o.Analyze(context.Background(), quittingText, Options{})
	if !res.OK || res.Error != nil {
		t.Fatalf("expected success, got %+v", res.Error)
	}
	if res.Situation.Archetype.Primary != catalog.Transformation {
		t.Errorf("archetype = %s, want transformation", res.Situation.Archetype.Primary)
	}
	want := 0.4*res.Situation.Confidence.Value + 0.6*res.Mapping.Confidence
	if math.Abs(res.Confidence-want) > 1e-12 {
		t.Errorf("aggregate confidence = %v, want %v", res.Confidence, want)
	}
	if res.Features == nil || res.Features.Source != "hashing" || res.Features.Dim != 64 {
		t.Errorf("unexpected features: %+v", res.Features)
	}
	if res.ID == "" || res.InputLength != len([]rune(quittingText)) || res.Timestamp.IsZero() {
		t.Errorf("missing result metadata: id=%q len=%d", res.ID, res.InputLength)
	}
	if r.Usage().Snapshot().Count(res.Mapping.Primary.Record.ID) != 1 {
		t.Error("primary usage should be incremented once")
	}
	if s := o.Stats(); s.TotalAnalyses != 1 || s.Failures != 0 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if h := o.History(); len(h) != 1 || h[0].ID != res.ID || h[0].Archetype != "transformation" {
		t.Errorf("unexpected history: %+v", h)
	}
}

func TestAnalyze_EmptyText(t *testing.T) {
	o := New(Deps{}, DefaultConfig())
	res := o.Analyze(context.Background(), "", Options{})
	if !res.OK {
		t.Fatalf("empty text must not fail: %+v", res.Error)
	}
	if res.Situation.Confidence.Value > 0.3 {
		t.Errorf("expected low situation confidence, got %v", res.Situation.Confidence.Value)
	}
}

func TestAnalyze_Locale(t *testing.T) {
	o := New(Deps{}, DefaultConfig())
	res := o.Analyze(context.Background(), "転職を少し考えています", Options{Locale: ranker.LocaleJA})
	if res.Mapping.Metadata.Locale != ranker.LocaleJA {
		t.Errorf("locale = %q", res.Mapping.Metadata.Locale)
	}
	if res.Situation.Archetype.Primary != catalog.Development {
		t.Errorf("archetype = %s, want development", res.Situation.Archetype.Primary)
	}
}

func TestAnalyze_JSONShape(t *testing.T) {
	res := New(Deps{}, DefaultConfig()).Analyze(context.Background(), quittingText, Options{})
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "ok", "situation", "mapping", "confidence", "processingMs"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
	if _, ok := doc["error"]; ok {
		t.Error("successful result should omit error")
	}
}

// #endregion analyze-tests

// #region feature-tests
func TestAnalyze_FeatureTimeoutDegrades(t *testing.T) {
	v := &blockingVectorizer{}
	o := New(Deps{Extractor: features.NewExtractor(v, features.DefaultExtractorConfig())}, fastConfig())

	res := o.Analyze(context.Background(), quittingText, Options{})
	if !res.OK {
		t.Fatalf("feature timeout must not fail the analysis: %+v", res.Error)
	}
	if res.Features != nil || !hasWarning(res, warnFeatures) {
		t.Errorf("expected degraded features, got %+v / %v", res.Features, res.Warnings)
	}
	if got := v.calls.Load(); got != 1+maxRetries {
		t.Errorf("vectorizer calls = %d, want %d", got, 1+maxRetries)
	}
}

func TestAnalyze_VectorizerIgnoringContextIsBounded(t *testing.T) {
	v := &blockingVectorizer{ignoreCtx: true, release: make(chan struct{})}
	t.Cleanup(func() { close(v.release) })
	cfg := fastConfig()
	cfg.MaxRetries = 0
	o := New(Deps{Extractor: features.NewExtractor(v, features.DefaultExtractorConfig())}, cfg)

	start := time.Now()
	res := o.Analyze(context.Background(), quittingText, Options{})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("analysis took %v despite feature timeout", elapsed)
	}
	if !res.OK || !hasWarning(res, warnFeatures) {
		t.Errorf("expected degraded success, got ok=%v warnings=%v", res.OK, res.Warnings)
	}
}

func TestAnalyze_FeatureRetryPolicy(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		calls int32
	}{
		{"unavailable retried", status.Error(codes.Unavailable, "down"), 1 + maxRetries},
		{"invalid not retried", status.Error(codes.InvalidArgument, "bad"), 1},
		{"plain not retried", errors.New("model missing"), 1},
	}
	for _, tt := range tests {
		v := &failingVectorizer{err: tt.err}
		o := New(Deps{Extractor: features.NewExtractor(v, features.DefaultExtractorConfig())}, fastConfig())
		res := o.Analyze(context.Background(), "hello", Options{})
		if !res.OK {
			t.Errorf("%s: analysis failed: %+v", tt.name, res.Error)
		}
		if got := v.calls.Load(); got != tt.calls {
			t.Errorf("%s: calls = %d, want %d", tt.name, got, tt.calls)
		}
	}
}

func TestAnalyze_SkipFeatures(t *testing.T) {
	v := &failingVectorizer{err: errors.New("unused")}
	o := New(Deps{Extractor: features.NewExtractor(v, features.DefaultExtractorConfig())}, fastConfig())
	res := o.Analyze(context.Background(), "hello", Options{SkipFeatures: true})
	if v.calls.Load() != 0 || res.Features != nil || len(res.Warnings) != 0 {
		t.Errorf("features should be skipped: calls=%d warnings=%v", v.calls.Load(), res.Warnings)
	}
}

// #endregion feature-tests

// #region cancellation-tests
func TestAnalyze_CancelledDuringFeatures(t *testing.T) {
	r := newRanker()
	v := &blockingVectorizer{}
	cfg := fastConfig()
	cfg.FeatureTimeout = time.Minute
	o := New(Deps{Ranker: r, Extractor: features.NewExtractor(v, features.DefaultExtractorConfig())}, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	res := o.Analyze(ctx, quittingText, Options{})

	if res.OK || res.Error == nil {
		t.Fatal("expected error result")
	}
	if res.Error.Phase != PhaseFeatures || !res.Error.Retryable || res.Error.Message != msgCancelled {
		t.Errorf("unexpected error: %+v", res.Error)
	}
	if r.Usage().Snapshot().Total() != 0 {
		t.Error("cancelled analysis must not record usage")
	}
	if len(o.History()) != 0 || o.Stats().Failures != 1 || o.Stats().TotalAnalyses != 0 {
		t.Errorf("unexpected bookkeeping: history=%d stats=%+v", len(o.History()), o.Stats())
	}
}

func TestAnalyze_CancelledBeforeCommit(t *testing.T) {
	stub := &stubRanker{Ranker: newRanker()}
	o := New(Deps{Ranker: stub}, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := o.Analyze(ctx, quittingText, Options{SkipFeatures: true})
	if res.OK || res.Error.Phase != PhaseRank || !res.Error.Retryable {
		t.Fatalf("unexpected result: ok=%v err=%+v", res.OK, res.Error)
	}
	if stub.commits != 0 {
		t.Errorf("commit called %d times", stub.commits)
	}
}

// #endregion cancellation-tests

// #region failure-tests
func TestAnalyze_ClassifierPanic(t *testing.T) {
	o := New(Deps{Classifier: panickingClassifier{}}, DefaultConfig())
	res := o.Analyze(context.Background(), quittingText, Options{})

	if res.OK || res.Error == nil || res.Error.Phase != PhaseClassify || res.Error.Retryable {
		t.Fatalf("unexpected result: %+v", res.Error)
	}
	if strings.Contains(res.Error.Message, "lexicon") || strings.Contains(res.Error.Message, "panic") {
		t.Errorf("raw cause leaked into message: %q", res.Error.Message)
	}
	m := res.Mapping
	if m.Primary.Record.ID != 4 || m.Line.Index != 1 || m.Confidence != 0.3 {
		t.Errorf("unexpected stand-in mapping: id=%d line=%d conf=%v", m.Primary.Record.ID, m.Line.Index, m.Confidence)
	}
	if res.Situation != nil {
		t.Error("failed result should not carry a situation")
	}
}

func TestAnalyze_RankerPanic(t *testing.T) {
	stub := &stubRanker{Ranker: newRanker(), panicPlan: true}
	o := New(Deps{Ranker: stub}, DefaultConfig())
	res := o.Analyze(context.Background(), quittingText, Options{})
	if res.OK || res.Error.Phase != PhaseRank || res.Error.Message != msgRank {
		t.Fatalf("unexpected result: %+v", res.Error)
	}
	if stub.commits != 0 {
		t.Error("failed plan must not be committed")
	}
	if res.Mapping.Interpretation.SituationText == "" {
		t.Error("stand-in mapping should be renderable")
	}
}

func TestAnalyze_RankerFullyBroken(t *testing.T) {
	stub := &stubRanker{Ranker: newRanker(), panicPlan: true, panicMinimal: true}
	res := New(Deps{Ranker: stub}, DefaultConfig()).Analyze(context.Background(), "x", Options{})
	if res.OK || res.Mapping.Primary.Record.ID != 4 || res.Mapping.Confidence != 0.3 {
		t.Errorf("expected bare default mapping, got %+v", res.Mapping.Primary.Record)
	}
}

func TestAnalyze_SynthesizedMapping(t *testing.T) {
	stub := &stubRanker{Ranker: newRanker(), synthesize: true}
	o := New(Deps{Ranker: stub}, DefaultConfig())
	res := o.Analyze(context.Background(), quittingText, Options{})
	if !res.OK || !hasWarning(res, warnSynthesized) {
		t.Fatalf("expected degraded success, got ok=%v warnings=%v", res.OK, res.Warnings)
	}
	if !res.Mapping.Metadata.Synthesized || stub.Usage().Snapshot().Total() != 0 {
		t.Error("synthesized mapping must not record usage")
	}
}

// #endregion failure-tests

// #region bookkeeping-tests
func TestAnalyze_HistoryEvictsOldest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistorySize = 3
	o := New(Deps{}, cfg)

	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, o.Analyze(context.Background(), quittingText, Options{SkipFeatures: true}).ID)
	}
	h := o.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3", len(h))
	}
	for i, e := range h {
		if e.ID != ids[i+2] {
			t.Errorf("history[%d] = %s, want %s", i, e.ID, ids[i+2])
		}
	}
}

func TestAnalyze_StatsIncrementalMean(t *testing.T) {
	o := New(Deps{}, DefaultConfig())
	texts := []string{quittingText, "", "転職を少し考えています", "I completed the work and I am satisfied."}
	var sum float64
	for _, text := range texts {
		sum += o.Analyze(context.Background(), text, Options{SkipFeatures: true}).Confidence
	}
	s := o.Stats()
	if s.TotalAnalyses != len(texts) {
		t.Fatalf("total = %d", s.TotalAnalyses)
	}
	if mean := sum / float64(len(texts)); math.Abs(s.AverageConfidence-mean) > 1e-9 {
		t.Errorf("average confidence = %v, want %v", s.AverageConfidence, mean)
	}
	if s.AverageProcessingMs < 0 || s.LastAnalysisAt.IsZero() {
		t.Errorf("unexpected timing stats: %+v", s)
	}
}

func TestAnalyze_SinkAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	sink := &memorySink{err: errors.New("disk full")}
	o := New(Deps{Sink: sink, Metrics: metrics}, DefaultConfig())

	o.Analyze(context.Background(), quittingText, Options{SkipFeatures: true})
	o.Analyze(context.Background(), "hello", Options{SkipFeatures: true})
	New(Deps{Sink: sink, Metrics: metrics, Classifier: panickingClassifier{}}, DefaultConfig()).
		Analyze(context.Background(), "x", Options{SkipFeatures: true})

	if len(sink.entries) != 3 {
		t.Fatalf("sink entries = %d, want 3", len(sink.entries))
	}
	if e := sink.entries[2]; e.OK || e.Phase != string(PhaseClassify) || e.PrimaryID != 4 {
		t.Errorf("unexpected failure entry: %+v", e)
	}
	if e := sink.entries[0]; !e.OK || e.Archetype != "transformation" || e.InputRunes == 0 {
		t.Errorf("unexpected success entry: %+v", e)
	}
	if got := testutil.ToFloat64(metrics.analyses.WithLabelValues("ok", "")); got != 2 {
		t.Errorf("ok analyses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.analyses.WithLabelValues("error", "classify")); got != 1 {
		t.Errorf("failed analyses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.fallbackLevel); got != 64 {
		t.Errorf("catalog level = %v, want 64", got)
	}
}

func TestAnalyze_DegradedCatalog(t *testing.T) {
	r := newRanker()
	r.Degradation().SimulateFailure()
	res := New(Deps{Ranker: r}, DefaultConfig()).Analyze(context.Background(), quittingText, Options{})
	if !res.OK || !res.Mapping.Fallback.IsActive || res.Mapping.Fallback.Level != 8 {
		t.Errorf("unexpected fallback info: %+v", res.Mapping.Fallback)
	}
}

// #endregion bookkeeping-tests

// #region batch-tests
func TestAnalyzeBatch(t *testing.T) {
	r := newRanker()
	o := New(Deps{Ranker: r}, DefaultConfig())
	texts := []string{quittingText, "", "転職を少し考えています", "hello", quittingText, "I keep going and continue to grow."}

	results := o.AnalyzeBatch(context.Background(), texts, Options{}, 3)
	if len(results) != len(texts) {
		t.Fatalf("results = %d", len(results))
	}
	for i, res := range results {
		if !res.OK {
			t.Errorf("result %d failed: %+v", i, res.Error)
		}
		if res.InputLength != len([]rune(texts[i])) {
			t.Errorf("result %d out of order", i)
		}
	}
	if total := r.Usage().Snapshot().Total(); total != len(texts) {
		t.Errorf("usage total = %d, want %d", total, len(texts))
	}
	if o.Stats().TotalAnalyses != len(texts) {
		t.Errorf("stats total = %d", o.Stats().TotalAnalyses)
	}
}

// #endregion batch-tests
