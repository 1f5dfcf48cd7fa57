package orchestrator

// #region imports
import (
	"fmt"
	"time"

	"github.com/haqei/situation-engine/internal/features"
	"github.com/haqei/situation-engine/internal/logging"
	"github.com/haqei/situation-engine/internal/ranker"
	"github.com/haqei/situation-engine/internal/situation"
)

// #endregion

// #region phase

// Phase names a pipeline step.
type Phase string

const (
	PhaseFeatures Phase = "features"
	PhaseClassify Phase = "classify"
	PhaseRank     Phase = "rank"
)

// #endregion

// #region pipeline-error

// PipelineError is the user-safe failure carried by a result.
type PipelineError struct {
	Phase     Phase  `json:"phase"`
	Retryable bool   `json:"retryable"`
	Message   string `json:"message"`
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s phase: %s", e.Phase, e.Message)
}

// User-safe messages per failure.
const (
	msgCancelled = "The analysis was stopped before it finished. Please try again."
	msgClassify  = "We could not read this text right now. Please try again later."
	msgRank      = "We could not complete the reading right now. Please try again later."
)

// #endregion

// #region options

// Options adjust a single analysis.
type Options struct {
	Locale       string // "" selects the configured locale
	SkipFeatures bool
}

// #endregion

// #region config

// Config holds pipeline tuning knobs.
type Config struct {
	FeatureTimeout time.Duration // bound on each vectorizer attempt
	MaxRetries     int           // vectorizer retries after the first attempt
	RetryBackoff   time.Duration // delay before retry n is n * RetryBackoff
	HistorySize    int
	Locale         string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		FeatureTimeout: 2 * time.Second,
		MaxRetries:     maxRetries,
		RetryBackoff:   50 * time.Millisecond,
		HistorySize:    100,
		Locale:         ranker.LocaleEN,
	}
}

// #endregion

// #region result

// AnalysisResult is the merged output of one analysis. A failed analysis
// still carries a renderable stand-in mapping.
type AnalysisResult struct {
	ID           string               `json:"id"`
	OK           bool                 `json:"ok"`
	Timestamp    time.Time            `json:"timestamp"`
	InputLength  int                  `json:"inputLength"`
	Situation    *situation.Signal    `json:"situation,omitempty"`
	Mapping      ranker.MappingResult `json:"mapping"`
	Features     *features.Features   `json:"features,omitempty"`
	Confidence   float64              `json:"confidence"`
	ProcessingMs float64              `json:"processingMs"`
	Warnings     []string             `json:"warnings,omitempty"`
	Error        *PipelineError       `json:"error,omitempty"`
}

// #endregion

// #region history-entry

// HistoryEntry summarizes one successful analysis.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Archetype  string    `json:"archetype"`
	PrimaryID  int       `json:"primaryId"`
	Line       int       `json:"line"`
	Confidence float64   `json:"confidence"`
	DurationMs float64   `json:"durationMs"`
}

// #endregion

// #region performance-stats

// PerformanceStats are rolling means over successful analyses.
type PerformanceStats struct {
	TotalAnalyses       int       `json:"totalAnalyses"`
	Failures            int       `json:"failures"`
	AverageConfidence   float64   `json:"averageConfidence"`
	AverageProcessingMs float64   `json:"averageProcessingMs"`
	LastAnalysisAt      time.Time `json:"lastAnalysisAt"`
}

// #endregion

// #region interfaces

// Classifier produces situation signals.
type Classifier interface {
	Classify(text string) situation.Signal
}

// Ranker plans and commits mappings.
type Ranker interface {
	Plan(sig situation.Signal, locale string) (ranker.MappingResult, error)
	Commit(res ranker.MappingResult)
	Minimal(locale string) ranker.MappingResult
}

// Sink receives one entry per analysis.
type Sink interface {
	LogAnalysis(entry logging.AnalysisEntry) error
}

// #endregion
