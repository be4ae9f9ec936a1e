package telemetry

import (
	"fmt"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the run counters on its own registry so a run's
// textfile export only ever holds this run's series.
type Metrics struct {
	registry *prometheus.Registry

	rowsProcessed prometheus.Counter
	rowsSucceeded prometheus.Counter
	rowsFailed    prometheus.Counter
	runDuration   prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		rowsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "descry",
			Subsystem: "descriptors",
			Name:      "rows_processed_total",
			Help:      "Total number of input rows processed.",
		}),
		rowsSucceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "descry",
			Subsystem: "descriptors",
			Name:      "rows_succeeded_total",
			Help:      "Total number of rows with a calculated fingerprint.",
		}),
		rowsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "descry",
			Subsystem: "descriptors",
			Name:      "rows_failed_total",
			Help:      "Total number of rows that failed validation or calculation.",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "descry",
			Subsystem: "descriptors",
			Name:      "run_duration_seconds",
			Help:      "Wall clock duration of the run.",
		}),
	}
}

func (obj *Metrics) ObserveRun(succeeded int64, failed int64, duration time.Duration) {
	obj.rowsProcessed.Add(float64(succeeded + failed))
	obj.rowsSucceeded.Add(float64(succeeded))
	obj.rowsFailed.Add(float64(failed))
	obj.runDuration.Set(duration.Seconds())
}

// WriteToFile exports the registry in the prometheus textfile format,
// ready for a node exporter textfile collector to pick up.
func (obj *Metrics) WriteToFile(path string) error {
	if err := prometheus.WriteToTextfile(path, obj.registry); err != nil {
		return errs.Wrap(err, fmt.Errorf("writing metrics file %s", path))
	}
	return nil
}
