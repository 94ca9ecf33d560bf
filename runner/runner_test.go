package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craeft-lang/craeft-acceptor/logging"
	"github.com/craeft-lang/craeft-acceptor/registry"
	"github.com/craeft-lang/craeft-acceptor/types"
)

// inlineConfig renders a test config whose pipeline is driven entirely by
// the stub tools: the "code" and "harness" are shell fragments that the
// stub linker splices into the produced script.
func inlineConfig(name, codeText, harnessText, output string) string {
	return fmt.Sprintf(`name: %s
code_text: |
%s
harness_text: |
%s
output_text: %q
`, name, indent(codeText), indent(harnessText), output)
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}

// newStubSuite builds a suite runner over testDir using stub tools.
func newStubSuite(t *testing.T, testDir string) SuiteRunner {
	t.Helper()
	toolDir := t.TempDir()

	reg, err := registry.NewRegistry(registry.Config{
		Log:     testLogger(),
		TestDir: testDir,
	})
	require.NoError(t, err)

	r, err := NewSuiteRunner(Config{
		Registry: reg,
		Pipeline: newStubPipeline(t, toolDir, stubCraeftc, stubCC),
		Log:      testLogger(),
	})
	require.NoError(t, err)
	return r
}

func TestRunSuiteAllPass(t *testing.T) {
	testDir := t.TempDir()
	writeFile(t, testDir, "01_first.yaml", inlineConfig("first", "echo one", "echo done", "one\ndone\n"))
	writeFile(t, testDir, "02_second.yaml", inlineConfig("second", "echo two", "echo done", "two\ndone\n"))

	result, err := newStubSuite(t, testDir).RunSuite(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.TestStatusPass, result.Status)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 2, result.Stats.Passed)
	assert.Zero(t, result.Stats.Failed)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "first", result.Results[0].Name)
	assert.Equal(t, "second", result.Results[1].Name)
}

func TestRunSuiteVerificationFailureContinues(t *testing.T) {
	testDir := t.TempDir()
	// One byte of the expectation is off
	writeFile(t, testDir, "01_bad.yaml", inlineConfig("bad", "echo one", "echo done", "one\ndonA\n"))
	writeFile(t, testDir, "02_good.yaml", inlineConfig("good", "echo two", "echo done", "two\ndone\n"))

	result, err := newStubSuite(t, testDir).RunSuite(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.TestStatusFail, result.Status)
	assert.Equal(t, 2, result.Stats.Total)
	assert.Equal(t, 1, result.Stats.Passed)
	assert.Equal(t, 1, result.Stats.Failed)

	require.Len(t, result.Results, 2)
	assert.True(t, types.IsVerificationError(result.Results[0].Error))

	var verErr *types.VerificationError
	require.True(t, errors.As(result.Results[0].Error, &verErr))
	assert.Equal(t, []byte("one\ndonA\n"), verErr.Expected)
	assert.Equal(t, []byte("one\ndone\n"), verErr.Actual)

	// The later test still ran
	assert.Equal(t, types.TestStatusPass, result.Results[1].Status)
}

func TestRunSuiteStageFailureRecorded(t *testing.T) {
	testDir := t.TempDir()
	writeFile(t, testDir, "broken.yaml", inlineConfig("broken", "echo x", "echo y", "x\ny\n"))

	toolDir := t.TempDir()
	reg, err := registry.NewRegistry(registry.Config{Log: testLogger(), TestDir: testDir})
	require.NoError(t, err)
	r, err := NewSuiteRunner(Config{
		Registry: reg,
		Pipeline: newStubPipeline(t, toolDir, stubFailingCraeftc, stubCC),
		Log:      testLogger(),
	})
	require.NoError(t, err)

	result, err := r.RunSuite(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	var stageErr *types.StageError
	require.True(t, errors.As(result.Results[0].Error, &stageErr))
	assert.Equal(t, types.StageCompileCraeft, stageErr.Stage)
}

func TestRunSuiteConfigErrorRecorded(t *testing.T) {
	testDir := t.TempDir()
	writeFile(t, testDir, "01_invalid.yaml", "name: invalid\ncode_text: echo x\nharness_text: echo y\n")
	writeFile(t, testDir, "02_valid.yaml", inlineConfig("valid", "echo x", "echo y", "x\ny\n"))

	result, err := newStubSuite(t, testDir).RunSuite(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.Total)
	require.Len(t, result.Results, 2)
	assert.True(t, types.IsConfigError(result.Results[0].Error))
	// A config error still uses the file name for display
	assert.Equal(t, "01_invalid", result.Results[0].Name)
	assert.Equal(t, types.TestStatusPass, result.Results[1].Status)
}

func TestRunSuiteUnexpectedErrorAborts(t *testing.T) {
	testDir := t.TempDir()
	// The expected-output file does not exist: not one of the three
	// recorded failure kinds, so the suite aborts.
	writeFile(t, testDir, "01_aborts.yaml", "name: aborts\ncode_text: echo x\nharness_text: echo y\noutput: missing.txt\n")
	writeFile(t, testDir, "02_never_runs.yaml", inlineConfig("never", "echo x", "echo y", "x\ny\n"))

	_, err := newStubSuite(t, testDir).RunSuite(context.Background())
	require.Error(t, err)
	assert.False(t, types.IsTestFailure(err))
}

func TestRunSuiteMissingCompilerAborts(t *testing.T) {
	testDir := t.TempDir()
	writeFile(t, testDir, "01_first.yaml", inlineConfig("first", "echo one", "echo done", "one\ndone\n"))
	writeFile(t, testDir, "02_second.yaml", inlineConfig("second", "echo two", "echo done", "two\ndone\n"))

	reg, err := registry.NewRegistry(registry.Config{Log: testLogger(), TestDir: testDir})
	require.NoError(t, err)
	p, err := NewPipeline(PipelineConfig{
		Compiler: filepath.Join(t.TempDir(), "craeftc"),
		Log:      testLogger(),
	})
	require.NoError(t, err)
	r, err := NewSuiteRunner(Config{Registry: reg, Pipeline: p, Log: testLogger()})
	require.NoError(t, err)

	// A compiler that cannot be started is not a failure of any one test:
	// the first case aborts the whole run
	_, err = r.RunSuite(context.Background())
	require.Error(t, err)
	assert.False(t, types.IsTestFailure(err))
	assert.Contains(t, err.Error(), "01_first.yaml")
}

func TestRunSuiteEmptyDirectory(t *testing.T) {
	result, err := newStubSuite(t, t.TempDir()).RunSuite(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Stats.Total)
	assert.Equal(t, types.TestStatusPass, result.Status)
}

func TestRunSuiteWritesFailureLogs(t *testing.T) {
	testDir := t.TempDir()
	writeFile(t, testDir, "bad.yaml", inlineConfig("bad test", "echo one", "echo done", "other\n"))

	logDir := t.TempDir()
	fileLogger, err := logging.NewFileLogger(logDir, "run-123")
	require.NoError(t, err)

	toolDir := t.TempDir()
	reg, err := registry.NewRegistry(registry.Config{Log: testLogger(), TestDir: testDir})
	require.NoError(t, err)
	r, err := NewSuiteRunner(Config{
		Registry:   reg,
		Pipeline:   newStubPipeline(t, toolDir, stubCraeftc, stubCC),
		Log:        testLogger(),
		FileLogger: fileLogger,
	})
	require.NoError(t, err)

	result, err := r.RunSuite(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-123", result.RunID)

	data, err := os.ReadFile(filepath.Join(fileLogger.RunDir(), "bad_test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "verification failure")
}

func TestFormatFailureTruncatesOnRuneBoundary(t *testing.T) {
	// 900 bytes of 3-byte runes; the cap is not a multiple of 3, so a
	// byte-offset slice would split a rune
	err := errors.New(strings.Repeat("界", 300))

	out := formatFailure(err)
	assert.True(t, utf8.ValidString(out), "truncated diagnostic must remain valid UTF-8")
	assert.Contains(t, out, "... (truncated)")
}

func TestNewSuiteRunnerValidation(t *testing.T) {
	_, err := NewSuiteRunner(Config{})
	require.ErrorContains(t, err, "registry is required")

	reg, err := registry.NewRegistry(registry.Config{Log: testLogger(), TestDir: t.TempDir()})
	require.NoError(t, err)
	_, err = NewSuiteRunner(Config{Registry: reg})
	require.ErrorContains(t, err, "pipeline is required")
}
