package types

import (
	"fmt"
	"time"
)

// TestStatus represents the outcome of a single test case.
type TestStatus string

const (
	TestStatusPass TestStatus = "pass"
	TestStatusFail TestStatus = "fail"
)

// TestResult captures the outcome of one test case.
type TestResult struct {
	Name     string
	Status   TestStatus
	Duration time.Duration
	// Error is nil on success; otherwise one of ConfigError, StageError
	// or VerificationError.
	Error error
}

// ResultStats tracks aggregate counts for a suite run.
type ResultStats struct {
	Total     int
	Passed    int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
}

// SuiteResult is the ordered record of a full suite run.
type SuiteResult struct {
	// Results holds one entry per discovered config, in attempt order.
	Results  []*TestResult
	Stats    ResultStats
	Status   TestStatus
	Duration time.Duration
	RunID    string
}

// String summarizes the run in one line.
func (s *SuiteResult) String() string {
	return fmt.Sprintf("Suite run %s: %d/%d passed (%s) [%s]",
		s.RunID, s.Stats.Passed, s.Stats.Total, s.Duration.Round(time.Millisecond), s.Status)
}

// Record appends a test result and updates the tally.
func (s *SuiteResult) Record(r *TestResult) {
	s.Results = append(s.Results, r)
	s.Stats.Total++
	if r.Status == TestStatusPass {
		s.Stats.Passed++
	} else {
		s.Stats.Failed++
	}
}
