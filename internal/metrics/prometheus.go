package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusOnce     sync.Once
	prometheusInstance *PrometheusCollector
)

// PrometheusCollector exposes run progress on the optional metrics
// endpoint, which is mostly of interest for long batch analyses.
type PrometheusCollector struct {
	// Game pipeline metrics
	gamesTotal   *prometheus.CounterVec
	pliesTotal   prometheus.Counter
	gameDuration prometheus.Histogram

	// Engine metrics
	engineUp            prometheus.Gauge
	engineQueriesTotal  *prometheus.CounterVec
	engineQueryDuration prometheus.Histogram
}

// NewPrometheusCollector creates the Prometheus metrics collector (singleton,
// promauto registers with the default registry).
func NewPrometheusCollector() *PrometheusCollector {
	prometheusOnce.Do(func() {
		prometheusInstance = &PrometheusCollector{
			gamesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chesstoc_games_total",
					Help: "Games processed, by outcome (analyzed, board_only, skipped)",
				},
				[]string{"status"},
			),
			pliesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "chesstoc_plies_evaluated_total",
					Help: "Total number of plies submitted to the engine",
				},
			),
			gameDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "chesstoc_game_duration_seconds",
					Help:    "Wall time spent per game, analysis and rendering included",
					Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
				},
			),
			engineUp: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "chesstoc_engine_up",
					Help: "Whether the engine subprocess is running (1) or not (0)",
				},
			),
			engineQueriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chesstoc_engine_queries_total",
					Help: "Engine position queries, by status (ok, error)",
				},
				[]string{"status"},
			),
			engineQueryDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "chesstoc_engine_query_duration_seconds",
					Help:    "Duration of engine position queries in seconds",
					Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				},
			),
		}
	})
	return prometheusInstance
}

// RecordGame records one finished game with its pipeline outcome.
func (p *PrometheusCollector) RecordGame(status string, duration time.Duration) {
	p.gamesTotal.WithLabelValues(status).Inc()
	p.gameDuration.Observe(duration.Seconds())
}

// RecordEngineQuery records one position query.
func (p *PrometheusCollector) RecordEngineQuery(status string, duration time.Duration) {
	p.engineQueriesTotal.WithLabelValues(status).Inc()
	p.engineQueryDuration.Observe(duration.Seconds())
	if status == "ok" {
		p.pliesTotal.Inc()
	}
}

// SetEngineUp reflects the engine process state.
func (p *PrometheusCollector) SetEngineUp(up bool) {
	if up {
		p.engineUp.Set(1)
	} else {
		p.engineUp.Set(0)
	}
}
