package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// #region metrics

// Metrics are the pipeline's Prometheus collectors.
type Metrics struct {
	analyses        *prometheus.CounterVec
	duration        prometheus.Histogram
	confidence      prometheus.Histogram
	featureFailures prometheus.Counter
	fallbackLevel   prometheus.Gauge
	selections      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "situation",
			Name:      "analyses_total",
			Help:      "Analyses by outcome and failing phase.",
		}, []string{"outcome", "phase"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "situation",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis latency.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		confidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "situation",
			Name:      "analysis_confidence",
			Help:      "Aggregate confidence of successful analyses.",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}),
		featureFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "situation",
			Name:      "feature_failures_total",
			Help:      "Vectorizer calls that failed after retries.",
		}),
		fallbackLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "situation",
			Name:      "catalog_level",
			Help:      "Catalog size used by the latest analysis.",
		}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "situation",
			Name:      "archetype_selections_total",
			Help:      "Primary archetype of successful analyses.",
		}, []string{"archetype"}),
	}
	if reg != nil {
		reg.MustRegister(m.analyses, m.duration, m.confidence, m.featureFailures, m.fallbackLevel, m.selections)
	}
	return m
}

func (m *Metrics) observe(res AnalysisResult) {
	m.duration.Observe(res.ProcessingMs / 1000)
	m.fallbackLevel.Set(float64(res.Mapping.Fallback.Level))
	if !res.OK {
		m.analyses.WithLabelValues("error", string(res.Error.Phase)).Inc()
		return
	}
	m.analyses.WithLabelValues("ok", "").Inc()
	m.confidence.Observe(res.Confidence)
	if res.Situation != nil {
		m.selections.WithLabelValues(string(res.Situation.Archetype.Primary)).Inc()
	}
}

// #endregion
