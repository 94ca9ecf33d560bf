package types

import (
	"errors"
	"fmt"
	"strings"
)

// The three failure kinds below are the only errors the suite runner
// converts into a recorded per-test failure. Anything else raised while
// running a test case escapes the per-test boundary and aborts the suite.

// ConfigError reports a structurally invalid test configuration: a missing
// required key, or a field specifying both or neither of its path/inline
// variants.
type ConfigError struct {
	// Field is the logical field at fault (eg. "code"), or "name" for
	// the missing-name case.
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field %q: %s", e.Field, e.Reason)
}

// NewConfigError creates a new ConfigError for the given field.
func NewConfigError(field string, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// IsConfigError checks if the error is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return err != nil && errors.As(err, &cfgErr)
}

// StageError reports a pipeline stage whose external process exited
// non-zero. It carries the stage identifier and the full invocation so
// failures can be reproduced by hand.
type StageError struct {
	Stage Stage
	// Args is the argv of the failed invocation, program first.
	Args []string
	// Stderr holds whatever the process wrote to stderr, for diagnostics.
	Stderr string
	Err    error
}

func (e *StageError) Error() string {
	msg := fmt.Sprintf("stage %s failed: %v (invocation: %s)", e.Stage, e.Err, strings.Join(e.Args, " "))
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError for the given stage and invocation.
func NewStageError(stage Stage, args []string, stderr string, err error) *StageError {
	return &StageError{Stage: stage, Args: args, Stderr: stderr, Err: err}
}

// IsStageError checks if the error is or wraps a StageError.
func IsStageError(err error) bool {
	var stageErr *StageError
	return err != nil && errors.As(err, &stageErr)
}

// VerificationError reports captured output that does not byte-exactly
// match the expectation. Both sequences are carried verbatim; display may
// truncate but the stored values never are.
type VerificationError struct {
	Expected []byte
	Actual   []byte
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("output incorrect: expected %q; found %q", e.Expected, e.Actual)
}

// NewVerificationError creates a new VerificationError.
func NewVerificationError(expected, actual []byte) *VerificationError {
	return &VerificationError{Expected: expected, Actual: actual}
}

// IsVerificationError checks if the error is or wraps a VerificationError.
func IsVerificationError(err error) bool {
	var verErr *VerificationError
	return err != nil && errors.As(err, &verErr)
}

// IsTestFailure reports whether err is one of the three failure kinds the
// suite runner records without aborting the run.
func IsTestFailure(err error) bool {
	return IsConfigError(err) || IsStageError(err) || IsVerificationError(err)
}
