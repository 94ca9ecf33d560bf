package acceptor

import (
	"github.com/craeft-lang/craeft-acceptor/metrics"
	"github.com/craeft-lang/craeft-acceptor/types"
)

// MetricsReporter is responsible for reporting metrics from suite results.
type MetricsReporter interface {
	ReportResults(result *types.SuiteResult)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the suite results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(result *types.SuiteResult) {
	metrics.RecordSuite(
		result.RunID,
		result.Status,
		result.Stats.Passed,
		result.Stats.Failed,
		result.Duration,
	)
}
