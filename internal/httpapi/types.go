package httpapi

import (
	"context"

	"github.com/haqei/situation-engine/internal/logging"
	"github.com/haqei/situation-engine/internal/orchestrator"
	"github.com/haqei/situation-engine/internal/ranker"
	"github.com/haqei/situation-engine/internal/usage"
)

// #region collaborators

// Analyzer runs analyses and reports on past ones.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts orchestrator.Options) orchestrator.AnalysisResult
	Stats() orchestrator.PerformanceStats
	History() []orchestrator.HistoryEntry
}

// LogReader lists persisted analysis rows.
type LogReader interface {
	Recent(ctx context.Context, limit int) ([]logging.AnalysisEntry, error)
}

// #endregion collaborators

// #region requests

type analyzeRequest struct {
	Text   string `json:"text"`
	Locale string `json:"locale,omitempty"`
}

type fallbackLevelRequest struct {
	Level int `json:"level"`
}

// #endregion requests

// #region responses

type degradationResponse struct {
	ranker.DegradationState
	QualityLevel float64 `json:"qualityLevel"`
}

type usageResponse struct {
	Total   int           `json:"total"`
	Records []usage.Entry `json:"records"`
}

type historyResponse struct {
	Recent []orchestrator.HistoryEntry `json:"recent"`
	Log    []logging.AnalysisEntry     `json:"log,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// #endregion responses
