package acceptor

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/craeft-lang/craeft-acceptor/flags"
)

// Config holds the application configuration
type Config struct {
	TestDir     string        // Directory holding test configs and referenced files
	Compiler    string        // Path to the craeftc binary under test
	CC          string        // Path to the system C compiler
	CCFlags     []string      // Extra flags for harness compilation
	RunInterval time.Duration // Interval between suite runs
	RunOnce     bool          // Indicates if the service should exit after one suite run
	LogDir      string        // Directory to store per-run failure logs
	Log         log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger, testDir string, compiler string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if testDir == "" {
		return nil, errors.New("test directory is required")
	}
	if compiler == "" {
		return nil, errors.New("craeftc path is required")
	}

	absTestDir, err := filepath.Abs(testDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for test directory '%s': %w", testDir, err)
	}

	// The compiler path may be a bare name resolved via PATH; only
	// absolutize explicit relative paths so stub tools keep working.
	absCompiler := compiler
	if filepath.IsAbs(compiler) || filepath.Base(compiler) != compiler {
		absCompiler, err = filepath.Abs(compiler)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for compiler '%s': %w", compiler, err)
		}
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	logDir := ctx.String(flags.LogDir.Name)
	if logDir == "" {
		logDir = "logs"
	}
	logDir, err = filepath.Abs(logDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory '%s': %w", logDir, err)
	}

	return &Config{
		TestDir:     absTestDir,
		Compiler:    absCompiler,
		CC:          ctx.String(flags.CC.Name),
		CCFlags:     ctx.StringSlice(flags.CCFlags.Name),
		RunInterval: runInterval,
		RunOnce:     runOnce,
		LogDir:      logDir,
		Log:         log,
	}, nil
}
