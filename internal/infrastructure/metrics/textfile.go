package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"bar-quality/internal/application/quality"
)

// TextfileSink 將每次執行結果寫成 node_exporter textfile collector 格式。
type TextfileSink struct {
	path string

	registry   *prometheus.Registry
	rows       *prometheus.GaugeVec
	violations *prometheus.GaugeVec
	failed     *prometheus.GaugeVec
	lastRun    prometheus.Gauge
}

func NewTextfileSink(path string) *TextfileSink {
	s := &TextfileSink{
		path:     path,
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "barcheck",
			Name:      "dataset_rows",
			Help:      "Rows loaded per dataset.",
		}, []string{"dataset"}),
		violations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "barcheck",
			Name:      "violations",
			Help:      "Offending rows found per check.",
		}, []string{"dataset", "check"}),
		failed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "barcheck",
			Name:      "check_failed",
			Help:      "1 when the check failed in the last run.",
		}, []string{"dataset", "check"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "barcheck",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}
	s.registry.MustRegister(s.rows, s.violations, s.failed, s.lastRun)
	return s
}

func (s *TextfileSink) Publish(_ context.Context, summary quality.Summary) error {
	for name, n := range summary.DatasetRows {
		s.rows.WithLabelValues(name).Set(float64(n))
	}
	for _, r := range summary.Results {
		s.violations.WithLabelValues(summary.Dataset, r.Label).Set(float64(r.Violations))
		failed := 0.0
		if r.Failed() {
			failed = 1
		}
		s.failed.WithLabelValues(summary.Dataset, r.Label).Set(failed)
	}
	s.lastRun.Set(float64(summary.FinishedAt.Unix()))

	if err := prometheus.WriteToTextfile(s.path, s.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
