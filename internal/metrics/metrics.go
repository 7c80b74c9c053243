package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	signalsGenerated     *prometheus.CounterVec
	recommendationsTotal *prometheus.CounterVec
	evaluationDuration   prometheus.Histogram
	backtestsTotal       *prometheus.CounterVec
	backtestDuration     prometheus.Histogram
	tickersSkipped       prometheus.Counter
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		signalsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantrail_signals_generated_total",
				Help: "Total number of strategy signals generated",
			},
			[]string{"strategy"},
		),
		recommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantrail_recommendations_total",
				Help: "Total number of recommendations produced",
			},
			[]string{"action"},
		),
		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quantrail_evaluation_duration_seconds",
				Help:    "Recommendation batch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantrail_backtests_total",
				Help: "Total number of backtests",
			},
			[]string{"status"},
		),
		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "quantrail_backtest_duration_seconds",
				Help:    "Backtest duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
		),
		tickersSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "quantrail_tickers_skipped_total",
				Help: "Tickers skipped for insufficient or missing history",
			},
		),
	}

	reg.MustRegister(r.signalsGenerated)
	reg.MustRegister(r.recommendationsTotal)
	reg.MustRegister(r.evaluationDuration)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.tickersSkipped)

	return r
}

// RecordSignal records a generated strategy signal.
func (r *Registry) RecordSignal(strategy string) {
	r.signalsGenerated.WithLabelValues(strategy).Inc()
}

// RecordRecommendation records a produced recommendation by action.
func (r *Registry) RecordRecommendation(action string) {
	r.recommendationsTotal.WithLabelValues(action).Inc()
}

// RecordEvaluation records the duration of a recommendation batch.
func (r *Registry) RecordEvaluation(duration float64) {
	r.evaluationDuration.Observe(duration)
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(status string, duration float64) {
	r.backtestsTotal.WithLabelValues(status).Inc()
	r.backtestDuration.Observe(duration)
}

// RecordTickerSkipped records a ticker dropped for lack of data.
func (r *Registry) RecordTickerSkipped() {
	r.tickersSkipped.Inc()
}
