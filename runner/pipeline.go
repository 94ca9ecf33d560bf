package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/craeft-lang/craeft-acceptor/types"
)

// Pipeline drives the four-stage build/execute pipeline for one test case.
// Stages are strictly sequential and fail-fast: a stage runs only if every
// prior stage exited 0. Every invocation is a blocking call with no
// timeout; a hung child process stalls the suite (documented limitation).
type Pipeline struct {
	compiler string   // path to the Craeft compiler under test
	cc       string   // path to the system C compiler / linker front-end
	ccFlags  []string // extra flags for harness compilation (eg. forcing a language mode)
	log      log.Logger
	tracer   trace.Tracer
}

// PipelineConfig holds configuration for creating a new pipeline.
type PipelineConfig struct {
	Compiler string
	CC       string
	CCFlags  []string
	Log      log.Logger
}

// NewPipeline creates a new pipeline executor.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if cfg.Compiler == "" {
		return nil, fmt.Errorf("compiler path is required")
	}
	if cfg.CC == "" {
		cfg.CC = "cc"
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}

	return &Pipeline{
		compiler: cfg.Compiler,
		cc:       cfg.CC,
		ccFlags:  cfg.CCFlags,
		log:      cfg.Log,
		tracer:   otel.Tracer("pipeline"),
	}, nil
}

// Run executes all four stages for the test case and returns the stdout
// captured from the produced executable. A non-zero exit at any stage
// returns a StageError tagged with the stage and invocation; no later
// stage is attempted.
func (p *Pipeline) Run(ctx context.Context, tc *types.TestCase) ([]byte, error) {
	if err := p.compileCraeft(ctx, tc); err != nil {
		return nil, err
	}
	if err := p.compileHarness(ctx, tc); err != nil {
		return nil, err
	}
	if err := p.link(ctx, tc); err != nil {
		return nil, err
	}
	return p.execute(ctx, tc)
}

// compileCraeft invokes the compiler under test on the Craeft source.
func (p *Pipeline) compileCraeft(ctx context.Context, tc *types.TestCase) error {
	args := []string{p.compiler, tc.Code.Path, "--obj", tc.CodeObject}
	_, err := p.runStage(ctx, types.StageCompileCraeft, args)
	return err
}

// compileHarness invokes the system C compiler on the harness source in
// compile-only mode. Extra flags come from configuration, not from the
// individual test.
func (p *Pipeline) compileHarness(ctx context.Context, tc *types.TestCase) error {
	args := []string{p.cc}
	args = append(args, p.ccFlags...)
	args = append(args, tc.Harness.Path, "-c", "-o", tc.HarnessObject)
	_, err := p.runStage(ctx, types.StageCompileHarness, args)
	return err
}

// link combines the two objects into the final executable.
func (p *Pipeline) link(ctx context.Context, tc *types.TestCase) error {
	args := []string{p.cc, tc.CodeObject, tc.HarnessObject, "-o", tc.Executable}
	_, err := p.runStage(ctx, types.StageLink, args)
	return err
}

// execute runs the produced executable with no arguments and captures its
// full stdout.
func (p *Pipeline) execute(ctx context.Context, tc *types.TestCase) ([]byte, error) {
	return p.runStage(ctx, types.StageExecute, []string{tc.Executable})
}

// runStage runs one external invocation to completion, requiring exit
// status 0. Stdout is captured and returned; stderr is captured for the
// StageError diagnostics.
func (p *Pipeline) runStage(ctx context.Context, stage types.Stage, args []string) ([]byte, error) {
	ctx, span := p.tracer.Start(ctx, fmt.Sprintf("stage %s", stage))
	defer span.End()

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	p.log.Debug("Running stage", "stage", stage, "command", cmd.String())

	if err := cmd.Run(); err != nil {
		// Only a non-zero exit is a recorded stage failure. A tool that
		// could not start at all (missing binary, bad permissions) or a
		// canceled context is an operational problem and aborts the suite.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, types.NewStageError(stage, args, stderr.String(), err)
		}
		return nil, fmt.Errorf("stage %s: running %s: %w", stage, args[0], err)
	}
	return stdout.Bytes(), nil
}
