package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/haqei/situation-engine/internal/catalog"
	"github.com/haqei/situation-engine/internal/logging"
	"github.com/haqei/situation-engine/internal/orchestrator"
	"github.com/haqei/situation-engine/internal/ranker"
	"github.com/haqei/situation-engine/internal/usage"
)

const quittingText = "I'm quitting everything to start a completely new life. I want to finally be free, even though I'm scared."

// #region mock

type recordingAnalyzer struct {
	mu     sync.Mutex
	texts  []string
	opts   []orchestrator.Options
	result orchestrator.AnalysisResult
}

func (a *recordingAnalyzer) Analyze(_ context.Context, text string, opts orchestrator.Options) orchestrator.AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.texts = append(a.texts, text)
	a.opts = append(a.opts, opts)
	return a.result
}

func (a *recordingAnalyzer) Stats() orchestrator.PerformanceStats { return orchestrator.PerformanceStats{} }

func (a *recordingAnalyzer) History() []orchestrator.HistoryEntry {
	return []orchestrator.HistoryEntry{{ID: "a"}, {ID: "b"}, {ID: "c"}}
}

type stubLog struct {
	rows  []logging.AnalysisEntry
	err   error
	limit int
}

func (l *stubLog) Recent(_ context.Context, limit int) ([]logging.AnalysisEntry, error) {
	l.limit = limit
	return l.rows, l.err
}

// #endregion mock

// #region helpers

type fixture struct {
	server *Server
	orch   *orchestrator.Orchestrator
	deg    *ranker.Degradation
	usage  *usage.Statistics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	deg := ranker.NewDegradation()
	stats := usage.NewStatistics()
	reg := prometheus.NewRegistry()
	orch := orchestrator.New(orchestrator.Deps{
		Ranker:  ranker.New(catalog.Default(), deg, stats, ranker.DefaultConfig(), nil),
		Metrics: orchestrator.NewMetrics(reg),
	}, orchestrator.DefaultConfig())
	srv, err := New(Deps{Analyzer: orch, Degradation: deg, Usage: stats, Gatherer: reg})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	return fixture{server: srv, orch: orch, deg: deg, usage: stats}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

// #endregion helpers

// #region constructor-tests

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Deps{Degradation: ranker.NewDegradation()}); err == nil {
		t.Error("expected error without analyzer")
	}
	if _, err := New(Deps{Analyzer: &recordingAnalyzer{}}); err == nil {
		t.Error("expected error without degradation controller")
	}
}

// #endregion constructor-tests

// #region analyze-tests

func TestAnalyze_OK(t *testing.T) {
	f := newFixture(t)
	h := f.server.Handler()

	body, _ := json.Marshal(analyzeRequest{Text: quittingText})
	w := do(t, h, http.MethodPost, "/v1/analyze", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("content type = %q", ct)
	}
	res := decode[orchestrator.AnalysisResult](t, w)
	if !res.OK || res.Situation == nil {
		t.Fatalf("expected ok result, got %+v", res)
	}
	if res.Situation.Archetype.Primary != catalog.Transformation {
		t.Errorf("archetype = %s, want transformation", res.Situation.Archetype.Primary)
	}
	if res.Mapping.Primary.Record.ID < 1 || res.ID == "" {
		t.Errorf("incomplete result: %+v", res.Mapping.Primary)
	}
	if f.usage.Snapshot().Total() != 1 {
		t.Errorf("usage total = %d, want 1", f.usage.Snapshot().Total())
	}
}

func TestAnalyze_SanitizesMarkup(t *testing.T) {
	a := &recordingAnalyzer{result: orchestrator.AnalysisResult{OK: true}}
	srv, err := New(Deps{Analyzer: a, Degradation: ranker.NewDegradation()})
	if err != nil {
		t.Fatal(err)
	}
	body := `{"text":"<script>alert(1)</script><b>I'm</b> starting & learning","locale":"ja"}`
	w := do(t, srv.Handler(), http.MethodPost, "/v1/analyze", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(a.texts) != 1 {
		t.Fatalf("analyzer called %d times", len(a.texts))
	}
	if got, want := a.texts[0], "I'm starting & learning"; got != want {
		t.Errorf("sanitized text = %q, want %q", got, want)
	}
	if a.opts[0].Locale != "ja" {
		t.Errorf("locale = %q, want ja", a.opts[0].Locale)
	}
}

func TestAnalyze_FailureStatus(t *testing.T) {
	tests := []struct {
		name      string
		retryable bool
		want      int
	}{
		{"retryable", true, http.StatusServiceUnavailable},
		{"permanent", false, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &recordingAnalyzer{result: orchestrator.AnalysisResult{
				Error: &orchestrator.PipelineError{Phase: orchestrator.PhaseRank, Retryable: tt.retryable, Message: "try again"},
			}}
			srv, _ := New(Deps{Analyzer: a, Degradation: ranker.NewDegradation()})
			w := do(t, srv.Handler(), http.MethodPost, "/v1/analyze", `{"text":"x"}`)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			res := decode[orchestrator.AnalysisResult](t, w)
			if res.OK || res.Error == nil || res.Error.Message != "try again" {
				t.Errorf("unexpected body: %+v", res)
			}
		})
	}
}

func TestAnalyze_BadRequests(t *testing.T) {
	srv, _ := New(Deps{Analyzer: &recordingAnalyzer{}, Degradation: ranker.NewDegradation()})
	h := srv.Handler()

	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"empty body", "", http.StatusBadRequest, "invalid_request"},
		{"malformed json", "{", http.StatusBadRequest, "invalid_request"},
		{"too large", `{"text":"` + strings.Repeat("a", maxRequestBody) + `"}`, http.StatusRequestEntityTooLarge, "payload_too_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/v1/analyze", tt.body)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			if e := decode[errorResponse](t, w); e.Error != tt.code || e.RequestID == "" {
				t.Errorf("unexpected error body: %+v", e)
			}
		})
	}
}

// #endregion analyze-tests

// #region control-tests

func TestFallbackLevel(t *testing.T) {
	f := newFixture(t)
	h := f.server.Handler()

	w := do(t, h, http.MethodPut, "/v1/fallback-level", `{"level":16}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decode[degradationResponse](t, w)
	want := degradationResponse{
		DegradationState: ranker.DegradationState{Level: 16, Active: true, Reason: "manual"},
		QualityLevel:     ranker.QualityLevel(16),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	w = do(t, h, http.MethodPut, "/v1/fallback-level", `{"level":20}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid level status = %d, want 400", w.Code)
	}
	if f.deg.State().Level != 16 {
		t.Errorf("invalid level changed state to %d", f.deg.State().Level)
	}

	w = do(t, h, http.MethodGet, "/v1/fallback-level", "")
	if got := decode[degradationResponse](t, w); got.Level != 16 {
		t.Errorf("GET level = %d, want 16", got.Level)
	}
}

func TestSimulateFailureAndRecovery(t *testing.T) {
	f := newFixture(t)
	h := f.server.Handler()

	w := do(t, h, http.MethodPost, "/v1/simulate/failure", "")
	st := decode[degradationResponse](t, w)
	if st.Level != 8 || !st.Active {
		t.Errorf("after failure: %+v", st)
	}

	body, _ := json.Marshal(analyzeRequest{Text: quittingText})
	res := decode[orchestrator.AnalysisResult](t, do(t, h, http.MethodPost, "/v1/analyze", string(body)))
	if !res.Mapping.Fallback.IsActive || res.Mapping.Fallback.Level != 8 {
		t.Errorf("analysis during failure: %+v", res.Mapping.Fallback)
	}

	w = do(t, h, http.MethodPost, "/v1/simulate/recovery", "")
	st = decode[degradationResponse](t, w)
	if st.Level != 64 || st.Active || st.QualityLevel != 1 {
		t.Errorf("after recovery: %+v", st)
	}
}

// #endregion control-tests

// #region report-tests

func TestUsageAndStats(t *testing.T) {
	f := newFixture(t)
	h := f.server.Handler()
	f.usage.Record(7)
	f.usage.Record(7)
	f.usage.Record(3)

	got := decode[usageResponse](t, do(t, h, http.MethodGet, "/v1/usage", ""))
	want := usageResponse{Total: 3, Records: []usage.Entry{{ID: 7, Count: 2}, {ID: 3, Count: 1}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("usage mismatch (-want +got):\n%s", diff)
	}

	body, _ := json.Marshal(analyzeRequest{Text: quittingText})
	do(t, h, http.MethodPost, "/v1/analyze", string(body))
	stats := decode[orchestrator.PerformanceStats](t, do(t, h, http.MethodGet, "/v1/stats", ""))
	if stats.TotalAnalyses != 1 || stats.AverageConfidence <= 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestUsageUnavailable(t *testing.T) {
	srv, _ := New(Deps{Analyzer: &recordingAnalyzer{}, Degradation: ranker.NewDegradation()})
	if w := do(t, srv.Handler(), http.MethodGet, "/v1/usage", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHistory(t *testing.T) {
	log := &stubLog{rows: []logging.AnalysisEntry{{ID: "row-1", OK: true}}}
	srv, _ := New(Deps{Analyzer: &recordingAnalyzer{}, Degradation: ranker.NewDegradation(), Log: log})
	h := srv.Handler()

	got := decode[historyResponse](t, do(t, h, http.MethodGet, "/v1/history?limit=2", ""))
	var ids []string
	for _, e := range got.Recent {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids); diff != "" {
		t.Errorf("recent order (-want +got):\n%s", diff)
	}
	if len(got.Log) != 1 || got.Log[0].ID != "row-1" || log.limit != 2 {
		t.Errorf("log rows = %+v, limit %d", got.Log, log.limit)
	}

	for _, q := range []string{"0", "-1", "abc"} {
		if w := do(t, h, http.MethodGet, "/v1/history?limit="+q, ""); w.Code != http.StatusBadRequest {
			t.Errorf("limit %q status = %d, want 400", q, w.Code)
		}
	}

	log.err = errors.New("disk gone")
	if w := do(t, h, http.MethodGet, "/v1/history", ""); w.Code != http.StatusInternalServerError {
		t.Errorf("log failure status = %d, want 500", w.Code)
	}
	if log.limit != defaultHistoryLimit {
		t.Errorf("default limit = %d", log.limit)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", defaultHistoryLimit, false},
		{"5", 5, false},
		{"100000", maxHistoryLimit, false},
		{"0", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLimit(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseLimit(%q) = %d, %v", tt.raw, got, err)
		}
	}
}

// #endregion report-tests

// #region ops-tests

func TestHealthzAndMetrics(t *testing.T) {
	f := newFixture(t)
	h := f.server.Handler()

	if w := do(t, h, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("healthz status = %d", w.Code)
	}

	body, _ := json.Marshal(analyzeRequest{Text: quittingText})
	do(t, h, http.MethodPost, "/v1/analyze", string(body))
	w := do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "situation_analyses_total") {
		t.Errorf("metrics output missing analyses counter:\n%s", w.Body.String())
	}
}

func TestMetricsDisabledWithoutGatherer(t *testing.T) {
	srv, _ := New(Deps{Analyzer: &recordingAnalyzer{}, Degradation: ranker.NewDegradation()})
	if w := do(t, srv.Handler(), http.MethodGet, "/metrics", ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// #endregion ops-tests
