package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts what a seeding run wrote. It owns its registry so several
// runs (or tests) never share counters.
type Recorder struct {
	registry *prometheus.Registry

	DocumentsCreated *prometheus.CounterVec
	OrdersByStatus   *prometheus.CounterVec
	StockMovements   *prometheus.CounterVec
	SkippedRefs      *prometheus.CounterVec
	IndexWarnings    prometheus.Counter
	RunDuration      prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		DocumentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posseed",
			Name:      "documents_created_total",
			Help:      "Documents inserted, by collection.",
		}, []string{"collection"}),
		OrdersByStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posseed",
			Name:      "orders_synthesized_total",
			Help:      "Synthetic orders, by status.",
		}, []string{"status"}),
		StockMovements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posseed",
			Name:      "stock_movements_total",
			Help:      "Stock ledger entries, by movement type.",
		}, []string{"type"}),
		SkippedRefs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "posseed",
			Name:      "skipped_references_total",
			Help:      "Recipe lookups skipped during consumption, by referenced collection.",
		}, []string{"kind"}),
		IndexWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "posseed",
			Name:      "index_warnings_total",
			Help:      "Index creations that failed and were ignored.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "posseed",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last seeding run.",
		}),
	}

	r.registry.MustRegister(
		r.DocumentsCreated,
		r.OrdersByStatus,
		r.StockMovements,
		r.SkippedRefs,
		r.IndexWarnings,
		r.RunDuration,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the registry in the text exposition format, suitable
// for node_exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
