package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"osi-dues/internal/ledger/application"
)

const (
	metricPrefix = "osi_"

	resultSuccess = "success"
	resultAborted = "aborted"
	resultError   = "error"
	resultDenied  = "permission_denied"
)

// Metrics bundles reconciliation run metrics on a dedicated registry so a
// batch run can flush them to a node-exporter textfile.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	RowsTotal       *prometheus.CounterVec
	PaymentsTotal   *prometheus.CounterVec
	AllocatedAmount prometheus.Counter
	CellWrites      prometheus.Counter
	EventsTotal     *prometheus.CounterVec
	Difference      prometheus.Gauge
	SavesTotal      *prometheus.CounterVec
	LastRunSeconds  prometheus.Gauge
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "runs_total",
				Help: "Total reconciliation runs by result",
			},
			[]string{"result"},
		),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "run_duration_seconds",
			Help:    "Reconciliation run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		RowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "extract_rows_total",
				Help: "Total bank extract rows by status",
			},
			[]string{"status"},
		),
		PaymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payments_total",
				Help: "Total aggregated payments by allocation status",
			},
			[]string{"status"},
		),
		AllocatedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "allocated_amount_total",
			Help: "Total amount allocated into the ledger",
		}),
		CellWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "ledger_cell_writes_total",
			Help: "Total ledger cell writes",
		}),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_total",
				Help: "Total run events by level and code",
			},
			[]string{"level", "code"},
		),
		Difference: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "reconciliation_difference",
			Help: "Extract total minus recorded tracking sum of the last run",
		}),
		SavesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_saves_total",
				Help: "Total ledger save attempts by result",
			},
			[]string{"result"},
		),
		LastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}
	m.registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RowsTotal,
		m.PaymentsTotal,
		m.AllocatedAmount,
		m.CellWrites,
		m.EventsTotal,
		m.Difference,
		m.SavesTotal,
		m.LastRunSeconds,
	)
	return m
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(report *application.Report) {
	if m == nil || report == nil {
		return
	}
	result := resultSuccess
	if report.Aborted {
		result = resultAborted
	}
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDuration.Observe(report.Duration().Seconds())
	m.RowsTotal.WithLabelValues("read").Add(float64(report.RowsRead))
	m.RowsTotal.WithLabelValues("rejected").Add(float64(report.RowsRejected))
	for _, a := range report.Allocations {
		m.PaymentsTotal.WithLabelValues(string(a.Status)).Inc()
	}
	m.AllocatedAmount.Add(float64(report.Allocated()))
	m.CellWrites.Add(float64(report.Writes))
	for _, e := range report.Events {
		m.EventsTotal.WithLabelValues(string(e.Level), string(e.Code)).Inc()
	}
	if rec := report.Reconciliation; rec != nil {
		m.Difference.Set(float64(rec.Difference))
	}
	if !report.FinishedAt.IsZero() {
		m.LastRunSeconds.Set(float64(report.FinishedAt.Unix()))
	}
}

// ObserveSave records one ledger save attempt.
func (m *Metrics) ObserveSave(err error, permissionDenied bool) {
	if m == nil {
		return
	}
	switch {
	case err == nil:
		m.SavesTotal.WithLabelValues(resultSuccess).Inc()
	case permissionDenied:
		m.SavesTotal.WithLabelValues(resultDenied).Inc()
	default:
		m.SavesTotal.WithLabelValues(resultError).Inc()
	}
}

// Gatherer exposes the registry.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// WriteTextfile writes every metric in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
