package manager

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// pipelineMetrics holds Prometheus metrics for analysis runs.
// A nil *pipelineMetrics is valid and records nothing.
type pipelineMetrics struct {
	linesTotal  *prometheus.CounterVec // status: parsed, skipped
	runsTotal   *prometheus.CounterVec // status: success, failed
	runDuration prometheus.Histogram
	lookupRules prometheus.Gauge
}

// newPipelineMetrics creates and registers pipeline metrics with reg.
func newPipelineMetrics(reg prometheus.Registerer) (*pipelineMetrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &pipelineMetrics{
		linesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowtag",
			Subsystem: "pipeline",
			Name:      "lines_total",
			Help:      "Total number of flow-log lines read, by parse status",
		}, []string{"status"}),

		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowtag",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of analysis runs, by outcome",
		}, []string{"status"}),

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "flowtag",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Duration of analysis runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),

		lookupRules: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "flowtag",
			Subsystem: "pipeline",
			Name:      "lookup_rules",
			Help:      "Number of lookup rules loaded by the most recent run",
		}),
	}

	for _, c := range []prometheus.Collector{m.linesTotal, m.runsTotal, m.runDuration, m.lookupRules} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *pipelineMetrics) recordLines(parsed, skipped int) {
	if m == nil {
		return
	}
	m.linesTotal.WithLabelValues("parsed").Add(float64(parsed))
	m.linesTotal.WithLabelValues("skipped").Add(float64(skipped))
}

func (m *pipelineMetrics) recordRun(err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
}

func (m *pipelineMetrics) setLookupRules(n int) {
	if m == nil {
		return
	}
	m.lookupRules.Set(float64(n))
}
