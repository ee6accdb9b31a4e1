// Package metrics exposes Prometheus counters for employee imports and the task queue.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	domain "github.com/mohammadpnp/employee-import/internal/domain/employee"
	"github.com/mohammadpnp/employee-import/internal/domain/task"
)

const (
	outcomeCreated         = "created"
	outcomeSkippedExisting = "skipped_existing"
	outcomeSkippedInFile   = "skipped_infile"
)

type ImportMetrics struct {
	rowsTotal    *prometheus.CounterVec
	batchesTotal prometheus.Counter
	tasksTotal   *prometheus.CounterVec
}

func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	factory := promauto.With(reg)
	return &ImportMetrics{
		rowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "employee_import",
			Name:      "rows_total",
			Help:      "Rows evaluated by import batches, by outcome.",
		}, []string{"outcome"}),
		batchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "employee_import",
			Name:      "batches_total",
			Help:      "Import batches processed to completion.",
		}),
		tasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "employee_import",
			Name:      "tasks_total",
			Help:      "Task attempts that ended, by kind and resulting status.",
		}, []string{"kind", "status"}),
	}
}

func (m *ImportMetrics) ObserveBatch(summary domain.ImportSummary) {
	m.batchesTotal.Inc()
	m.rowsTotal.WithLabelValues(outcomeCreated).Add(float64(summary.Created))
	m.rowsTotal.WithLabelValues(outcomeSkippedExisting).Add(float64(summary.SkippedExisting))
	m.rowsTotal.WithLabelValues(outcomeSkippedInFile).Add(float64(summary.SkippedInFile))
}

func (m *ImportMetrics) ObserveTask(kind task.Kind, status task.Status) {
	m.tasksTotal.WithLabelValues(string(kind), string(status)).Inc()
}
