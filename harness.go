// Package acceptor wires the integration-test harness for the Craeft
// compiler: it discovers YAML test configs, drives the
// compile/compile/link/execute pipeline for each, and reports outcomes.
package acceptor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/craeft-lang/craeft-acceptor/exitcodes"
	"github.com/craeft-lang/craeft-acceptor/logging"
	"github.com/craeft-lang/craeft-acceptor/registry"
	"github.com/craeft-lang/craeft-acceptor/runner"
	"github.com/craeft-lang/craeft-acceptor/types"
)

// Harness runs the Craeft integration suite, once or periodically.
type Harness struct {
	ctx      context.Context
	config   *Config
	version  string
	registry *registry.Registry
	pipeline *runner.Pipeline

	scheduler TestScheduler
	formatter ResultFormatter
	reporter  MetricsReporter

	result *types.SuiteResult
}

// New creates a Harness from a validated config.
func New(ctx context.Context, config *Config, version string) (*Harness, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating harness with config",
		"testDir", config.TestDir,
		"compiler", config.Compiler,
		"cc", config.CC,
		"ccFlags", config.CCFlags,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	reg, err := registry.NewRegistry(registry.Config{
		Log:     config.Log,
		TestDir: config.TestDir,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	pipeline, err := runner.NewPipeline(runner.PipelineConfig{
		Compiler: config.Compiler,
		CC:       config.CC,
		CCFlags:  config.CCFlags,
		Log:      config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	h := &Harness{
		ctx:       ctx,
		config:    config,
		version:   version,
		registry:  reg,
		pipeline:  pipeline,
		formatter: NewConsoleResultFormatter(config.Log),
		reporter:  NewDefaultMetricsReporter(),
	}
	h.scheduler = NewDefaultTestScheduler(config.RunInterval, config.RunOnce, config.Log, h.runTests)

	config.Log.Info("harness.New: created registry and pipeline")
	return h, nil
}

// Start runs the suite, once or periodically per the configured interval.
// In run-once mode it returns a TestFailureError when any test failed, so
// the process exits with the test-failure code.
func (h *Harness) Start(ctx context.Context) error {
	// Panic recovery so runtime errors exit with code 2
	defer func() {
		if r := recover(); r != nil {
			h.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	h.ctx = ctx

	if h.config.RunOnce {
		h.config.Log.Info("Starting craeft-acceptor in run-once mode")
	} else {
		h.config.Log.Info("Starting craeft-acceptor in continuous mode", "interval", h.config.RunInterval)
	}

	if err := h.scheduler.Start(ctx); err != nil {
		h.config.Log.Error("Runtime error running tests", "error", err)
		return NewRuntimeError(err)
	}

	if h.config.RunOnce {
		h.config.Log.Info("Tests completed, exiting (run-once mode)")
		if h.result != nil && h.result.Status == types.TestStatusFail {
			h.config.Log.Warn("Run-once suite completed with failures, returning exit code 1")
			return NewTestFailureError(h.result.String())
		}
		return nil
	}

	h.config.Log.Debug("craeft-acceptor started successfully")
	return nil
}

// runTests runs the full suite once and processes the results. Each run
// gets its own run ID and failure-log directory.
func (h *Harness) runTests(ctx context.Context) error {
	runID := uuid.New().String()

	fileLogger, err := logging.NewFileLogger(h.config.LogDir, runID)
	if err != nil {
		// Failure logs are best-effort; the run proceeds without them.
		h.config.Log.Warn("Failed to create file logger", "error", err)
		fileLogger = nil
	}

	suiteRunner, err := runner.NewSuiteRunner(runner.Config{
		Registry:   h.registry,
		Pipeline:   h.pipeline,
		Log:        h.config.Log,
		FileLogger: fileLogger,
	})
	if err != nil {
		return err
	}

	executor := NewDefaultTestExecutor(suiteRunner, h.config.Log)
	result, err := executor.RunTests(ctx)
	if err != nil {
		h.config.Log.Error("Runtime error running tests", "error", err)
		return err
	}
	h.result = result

	if err := h.formatter.FormatResults(result); err != nil {
		h.config.Log.Error("Error formatting results", "error", err)
	}
	h.reporter.ReportResults(result)

	h.config.Log.Info("Suite run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// Result returns the most recent suite result, or nil before the first run.
func (h *Harness) Result() *types.SuiteResult {
	return h.result
}

// Stop stops the harness.
func (h *Harness) Stop(ctx context.Context) error {
	h.config.Log.Info("Stopping craeft-acceptor")
	if err := h.scheduler.Stop(); err != nil {
		return err
	}
	h.config.Log.Info("craeft-acceptor stopped successfully")
	return nil
}

// Stopped returns true if the harness is stopped.
func (h *Harness) Stopped() bool {
	return h.scheduler.Stopped()
}

// WaitForShutdown blocks until all background goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving on.
func (h *Harness) WaitForShutdown(ctx context.Context) error {
	return h.scheduler.WaitForShutdown(ctx)
}
