// Package metrics records library activity as prometheus metrics. A
// *Collector satisfies trace.Observer and codec.DocumentObserver.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cameronsjo/modulemd/internal/modulemd"
)

const namespace = "modulemd"

// Collector holds the registered metric vectors.
type Collector struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	documents  *prometheus.CounterVec
	conflicts  prometheus.Counter
}

// NewCollector creates the metrics and registers them with registry. A nil
// registry gets a fresh one.
func NewCollector(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Library operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of library operations.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_parsed_total",
			Help:      "Parsed documents by type and result.",
		}, []string{"doctype", "result"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "merge_conflicts_total",
			Help:      "Defaults merges rejected with a conflict.",
		}),
	}

	registry.MustRegister(c.operations, c.duration, c.documents, c.conflicts)
	return c
}

// ObserveOperation records a finished operation.
func (c *Collector) ObserveOperation(op string, elapsed time.Duration, err error) {
	outcome := Outcome(err)
	c.operations.WithLabelValues(op, outcome).Inc()
	c.duration.WithLabelValues(op).Observe(elapsed.Seconds())
	if outcome == "conflict" {
		c.conflicts.Inc()
	}
}

// ObserveDocument records the result of parsing one document. doctype is
// "unknown" when the document could not be classified.
func (c *Collector) ObserveDocument(doctype string, err error) {
	if doctype == "" {
		doctype = "unknown"
	}
	c.documents.WithLabelValues(doctype, Outcome(err)).Inc()
}

// Outcome maps an error to a low-cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, modulemd.ErrConflict):
		return "conflict"
	case errors.Is(err, modulemd.ErrParse):
		return "parse_error"
	case errors.Is(err, modulemd.ErrValidation):
		return "validation_error"
	case errors.Is(err, modulemd.ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "error"
	}
}
