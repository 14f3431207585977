package jobrunner

import (
	"github.com/glyphlang/glyph/pkg/metrics"
)

// Metrics counts job-runner activity: jobs submitted, functions emitted,
// operator-table entries registered, and generator errors by kind.
type Metrics struct {
	m *metrics.Metrics
}

// NewMetrics registers the job-runner's custom counters against a fresh
// metrics.Metrics instance.
func NewMetrics() (*Metrics, error) {
	cfg := metrics.DefaultConfig()
	cfg.Subsystem = "jobrunner"
	m := metrics.NewMetrics(cfg)

	if err := m.RegisterCustomCounter("jobs_submitted_total", "Total compilation jobs submitted", nil); err != nil {
		return nil, err
	}
	if err := m.RegisterCustomCounter("functions_emitted_total", "Total functions emitted by the symbolic generator", nil); err != nil {
		return nil, err
	}
	if err := m.RegisterCustomCounter("operator_tables_total", "Total operator-table entries registered", nil); err != nil {
		return nil, err
	}
	if err := m.RegisterCustomCounter("generator_errors_total", "Total generator errors by kind", []string{"kind"}); err != nil {
		return nil, err
	}

	return &Metrics{m: m}, nil
}

func (jm *Metrics) JobSubmitted() {
	jm.m.IncrementCustomCounter("jobs_submitted_total", nil)
}

func (jm *Metrics) FunctionEmitted() {
	jm.m.IncrementCustomCounter("functions_emitted_total", nil)
}

func (jm *Metrics) OperatorTableRegistered() {
	jm.m.IncrementCustomCounter("operator_tables_total", nil)
}

func (jm *Metrics) GeneratorError(kind string) {
	jm.m.IncrementCustomCounter("generator_errors_total", map[string]string{"kind": kind})
}

// Registry exposes the underlying Prometheus registry so a server can
// mount /metrics via metrics.Handler().
func (jm *Metrics) Registry() *metrics.Metrics {
	return jm.m
}
