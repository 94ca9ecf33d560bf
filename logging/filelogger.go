// Package logging persists per-test failure diagnostics to disk so a
// failing run leaves more behind than console output.
package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/craeft-lang/craeft-acceptor/types"
)

// RunDirectoryPrefix is the standardized prefix for per-run log directories.
const RunDirectoryPrefix = "testrun-"

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// FileLogger writes one diagnostic file per failed test under
// <baseDir>/testrun-<runID>/. It is best-effort: callers treat write
// failures as warnings, never as test outcomes.
type FileLogger struct {
	baseDir string
	runID   string
}

// NewFileLogger creates a file logger rooted at baseDir for the given run.
func NewFileLogger(baseDir, runID string) (*FileLogger, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID is required")
	}
	l := &FileLogger{baseDir: baseDir, runID: runID}
	if err := os.MkdirAll(l.RunDir(), 0755); err != nil {
		return nil, fmt.Errorf("creating run log directory: %w", err)
	}
	return l, nil
}

// GetRunID returns the run ID this logger was created for.
func (l *FileLogger) GetRunID() string {
	return l.runID
}

// RunDir returns the directory receiving this run's failure logs.
func (l *FileLogger) RunDir() string {
	return filepath.Join(l.baseDir, RunDirectoryPrefix+l.runID)
}

// LogFailure writes the diagnostics for one failed test. The file carries
// the failure kind and the full, untruncated context: invocation and
// stderr for stage failures, both byte sequences for verification
// failures.
func (l *FileLogger) LogFailure(result *types.TestResult) error {
	if result.Error == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "test: %s\n", result.Name)
	fmt.Fprintf(&b, "time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "duration: %s\n", result.Duration)

	var cfgErr *types.ConfigError
	var stageErr *types.StageError
	var verErr *types.VerificationError
	switch {
	case errors.As(result.Error, &cfgErr):
		fmt.Fprintf(&b, "kind: config error\nfield: %s\nreason: %s\n", cfgErr.Field, cfgErr.Reason)
	case errors.As(result.Error, &stageErr):
		fmt.Fprintf(&b, "kind: stage failure\nstage: %s\n", stageErr.Stage)
		fmt.Fprintf(&b, "invocation: %s\n", strings.Join(stageErr.Args, " "))
		fmt.Fprintf(&b, "error: %v\n", stageErr.Err)
		if stageErr.Stderr != "" {
			fmt.Fprintf(&b, "stderr:\n%s\n", stripansi.Strip(stageErr.Stderr))
		}
	case errors.As(result.Error, &verErr):
		fmt.Fprintf(&b, "kind: verification failure\n")
		fmt.Fprintf(&b, "expected (%d bytes):\n%s\n", len(verErr.Expected), verErr.Expected)
		fmt.Fprintf(&b, "actual (%d bytes):\n%s\n", len(verErr.Actual), verErr.Actual)
	default:
		fmt.Fprintf(&b, "kind: unknown\nerror: %v\n", result.Error)
	}

	path := filepath.Join(l.RunDir(), safeFileName(result.Name)+".log")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing failure log %s: %w", path, err)
	}
	return nil
}

// safeFileName flattens a test display name into something usable as a
// filename.
func safeFileName(name string) string {
	s := unsafeNameChars.ReplaceAllString(name, "_")
	if s == "" {
		s = "unnamed"
	}
	return s
}
