package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/craeft-lang/craeft-acceptor/logging"
	"github.com/craeft-lang/craeft-acceptor/metrics"
	"github.com/craeft-lang/craeft-acceptor/registry"
	"github.com/craeft-lang/craeft-acceptor/types"
)

// maxInlineDiagnostic caps how much of a failure message is echoed to the
// console. The full context is kept on the error and in the failure logs.
const maxInlineDiagnostic = 800

// SuiteRunner defines the interface for running the integration suite.
type SuiteRunner interface {
	RunSuite(ctx context.Context) (*types.SuiteResult, error)
}

// runner struct implements the SuiteRunner interface.
type runner struct {
	registry   *registry.Registry
	pipeline   *Pipeline
	log        log.Logger
	fileLogger *logging.FileLogger
	runID      string
	tracer     trace.Tracer
}

// Config holds configuration for creating a new runner.
type Config struct {
	Registry   *registry.Registry
	Pipeline   *Pipeline
	Log        log.Logger
	FileLogger *logging.FileLogger // optional; failure diagnostics on disk
}

// NewSuiteRunner creates a new suite runner instance.
func NewSuiteRunner(cfg Config) (SuiteRunner, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	return &runner{
		registry:   cfg.Registry,
		pipeline:   cfg.Pipeline,
		log:        cfg.Log,
		fileLogger: cfg.FileLogger,
		tracer:     otel.Tracer("suite runner"),
	}, nil
}

// RunSuite implements the SuiteRunner interface. It discovers every test
// config, runs each case to completion in discovery order, and aggregates
// the outcomes. The three recorded failure kinds (config, stage,
// verification) never abort the suite; any other error does, after the
// current case's resources have been released.
func (r *runner) RunSuite(ctx context.Context) (*types.SuiteResult, error) {
	if r.fileLogger != nil {
		r.runID = r.fileLogger.GetRunID()
	} else {
		r.runID = uuid.New().String()
	}
	defer func() {
		r.runID = ""
	}()

	start := time.Now()
	r.log.Debug("Running suite", "run_id", r.runID)

	configs, err := r.registry.DiscoverConfigs()
	if err != nil {
		return nil, err
	}

	result := &types.SuiteResult{
		RunID: r.runID,
		Stats: types.ResultStats{StartTime: start},
	}

	fmt.Println("Running tests...")
	for i, cfgPath := range configs {
		tr, err := r.runCase(ctx, cfgPath)
		if err != nil {
			return nil, fmt.Errorf("running test config %s: %w", filepath.Base(cfgPath), err)
		}
		result.Record(tr)
		r.report(i+1, len(configs), tr)
		metrics.RecordTest(r.runID, tr.Name, tr.Status)
	}

	result.Duration = time.Since(start)
	result.Stats.EndTime = time.Now()
	result.Status = types.TestStatusPass
	if result.Stats.Failed > 0 {
		result.Status = types.TestStatusFail
	}

	fmt.Printf("\nTests complete. %d/%d succeeded.\n", result.Stats.Passed, result.Stats.Total)
	return result, nil
}

// runCase runs a single test case through resolve → provision → pipeline →
// compare. Resources allocated for the case are released before returning,
// whatever the outcome. A failure of one of the three recorded kinds comes
// back as a failed TestResult; any other error is returned to abort the
// suite.
func (r *runner) runCase(ctx context.Context, cfgPath string) (*types.TestResult, error) {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("test %s", filepath.Base(cfgPath)))
	defer span.End()

	start := time.Now()

	// Until the config resolves, the best display name we have is the
	// file name.
	name := strings.TrimSuffix(filepath.Base(cfgPath), registry.ConfigSuffix)

	ws := NewWorkspace(r.log)
	defer ws.Release()

	err := r.attemptCase(ctx, cfgPath, &name, ws)

	tr := &types.TestResult{
		Name:     name,
		Status:   types.TestStatusPass,
		Duration: time.Since(start),
	}
	if err == nil {
		return tr, nil
	}
	if !types.IsTestFailure(err) {
		// Inherited behavior: only the three taxonomy kinds are caught
		// here. Everything else escapes and aborts the run; the deferred
		// Release above still tears the case down.
		return nil, err
	}

	tr.Status = types.TestStatusFail
	tr.Error = err
	return tr, nil
}

// attemptCase is the fallible body of one test case. It rebinds name as
// soon as the config resolves so failure reports use the configured test
// name rather than the file name.
func (r *runner) attemptCase(ctx context.Context, cfgPath string, name *string, ws *Workspace) error {
	spec, err := r.registry.ResolveSpec(cfgPath)
	if err != nil {
		return err
	}
	*name = spec.Name

	tc, err := ws.Provision(spec)
	if err != nil {
		return err
	}

	stdout, err := r.pipeline.Run(ctx, tc)
	if err != nil {
		return err
	}

	return verifyOutput(tc.ExpectedOutput, stdout)
}

// report prints the per-test console line, with diagnostic detail on
// failure.
func (r *runner) report(index, total int, tr *types.TestResult) {
	prefix := fmt.Sprintf("test %d/%d (%s) ", index, total, tr.Name)
	if tr.Status == types.TestStatusPass {
		fmt.Println(prefix + "succeeded.")
		return
	}

	fmt.Println(prefix + "failed.")
	fmt.Println(formatFailure(tr.Error))
	r.log.Error("Test failed", "test", tr.Name, "err", tr.Error)

	if r.fileLogger != nil {
		if err := r.fileLogger.LogFailure(tr); err != nil {
			r.log.Warn("Failed to write failure log", "test", tr.Name, "err", err)
		}
	}
}

// formatFailure renders a failure for the console: ANSI-scrubbed (compiler
// diagnostics are often colored) and truncated. The underlying error keeps
// the full context.
func formatFailure(err error) string {
	msg := stripansi.Strip(err.Error())
	if len(msg) > maxInlineDiagnostic {
		msg = truncateString(msg, maxInlineDiagnostic) + "... (truncated)"
	}
	return "    " + strings.ReplaceAll(msg, "\n", "\n    ")
}

// truncateString cuts s to at most n bytes without splitting a multi-byte
// rune.
func truncateString(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
