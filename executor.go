package acceptor

import (
	"context"

	"github.com/ethereum/go-ethereum/log"

	"github.com/craeft-lang/craeft-acceptor/runner"
	"github.com/craeft-lang/craeft-acceptor/types"
)

// TestExecutor is responsible for running the integration suite.
type TestExecutor interface {
	RunTests(ctx context.Context) (*types.SuiteResult, error)
}

// DefaultTestExecutor implements the TestExecutor interface.
type DefaultTestExecutor struct {
	runner runner.SuiteRunner
	logger log.Logger
}

// NewDefaultTestExecutor creates a new DefaultTestExecutor.
func NewDefaultTestExecutor(runner runner.SuiteRunner, logger log.Logger) *DefaultTestExecutor {
	return &DefaultTestExecutor{
		runner: runner,
		logger: logger,
	}
}

// RunTests runs the full suite once.
func (e *DefaultTestExecutor) RunTests(ctx context.Context) (*types.SuiteResult, error) {
	e.logger.Info("Running all tests...")
	return e.runner.RunSuite(ctx)
}
