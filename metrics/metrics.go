package metrics

import (
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/craeft-lang/craeft-acceptor/types"
)

const (
	MetricsNamespace = "craeft_acceptor"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of integration tests run",
	}, []string{
		"run_id",
		"name",
		"result",
	})

	suiteResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_results",
		Help:      "Result of suite runs",
	}, []string{
		"run_id",
		"result",
	})

	suiteTestsPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_tests_passed",
		Help:      "Number of passed tests in a suite run",
	}, []string{
		"run_id",
	})

	suiteTestsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_tests_failed",
		Help:      "Number of failed tests in a suite run",
	}, []string{
		"run_id",
	})

	suiteDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_duration_seconds",
		Help:      "Duration of suite runs",
	}, []string{
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = label + "." + errToLabel(err)
	RecordError(label)
}

// RecordTest records the outcome of a single integration test.
func RecordTest(runID string, name string, result types.TestStatus) {
	if Debug {
		log.Debug("metric inc",
			"m", "tests_total",
			"run_id", runID,
			"name", name,
			"result", result,
		)
	}
	testsTotal.WithLabelValues(runID, name, string(result)).Inc()
}

// RecordSuite records the aggregate outcome of a suite run.
func RecordSuite(runID string, result types.TestStatus, passed, failed int, duration time.Duration) {
	if Debug {
		log.Debug("metric set",
			"m", "suite_results",
			"run_id", runID,
			"result", result,
			"passed", passed,
			"failed", failed,
			"duration", duration,
		)
	}
	suiteResults.WithLabelValues(runID, string(result)).Set(1)
	suiteTestsPassed.WithLabelValues(runID).Add(float64(passed))
	suiteTestsFailed.WithLabelValues(runID).Add(float64(failed))
	suiteDuration.WithLabelValues(runID).Set(duration.Seconds())
}
