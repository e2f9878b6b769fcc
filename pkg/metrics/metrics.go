package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the learner engine.
type Metrics struct {
	InteractionsRecorded prometheus.Counter
	OptimizationsTotal   prometheus.Counter
	TrainingLoss         prometheus.Histogram
	ExplorationRate      prometheus.Gauge
	PredictionLatency    prometheus.Histogram
}

var (
	once   sync.Once
	shared *Metrics
)

// New registers and returns the process-wide metrics. Safe to call from
// multiple constructors; registration happens once.
func New() *Metrics {
	once.Do(func() {
		shared = &Metrics{
			InteractionsRecorded: promauto.NewCounter(prometheus.CounterOpts{
				Name: "pathlearn_interactions_recorded_total",
				Help: "Interaction events recorded across all learners",
			}),
			OptimizationsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "pathlearn_optimizations_total",
				Help: "Curriculum optimization calls",
			}),
			TrainingLoss: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "pathlearn_training_loss",
				Help:    "Policy training loss per update",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
			}),
			ExplorationRate: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "pathlearn_exploration_rate",
				Help: "Current epsilon of the curriculum policy",
			}),
			PredictionLatency: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "pathlearn_prediction_latency_seconds",
				Help:    "Latency of performance predictions",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			}),
		}
	})
	return shared
}
