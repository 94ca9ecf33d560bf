package acceptor

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/craeft-lang/craeft-acceptor/types"
)

// ResultFormatter is responsible for formatting and displaying suite results.
type ResultFormatter interface {
	FormatResults(result *types.SuiteResult) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
	}
}

// FormatResults renders the suite results as a console table.
func (f *ConsoleResultFormatter) FormatResults(result *types.SuiteResult) error {
	f.logger.Info("Printing results...")
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Craeft Integration Results (%s)", formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"#", "Test", "Duration", "Status", "Error",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for i, tr := range result.Results {
		t.AppendRow(table.Row{
			i + 1,
			tr.Name,
			formatDuration(tr.Duration),
			getResultString(tr.Status),
			extractKeyErrorMessage(tr.Error),
		})
	}

	if result.Status == types.TestStatusPass {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d tests", result.Stats.Total),
		formatDuration(result.Duration),
		getResultString(result.Status),
		fmt.Sprintf("%d passed, %d failed", result.Stats.Passed, result.Stats.Failed),
	})

	t.Render()

	fmt.Println(result.String())
	return nil
}

// extractKeyErrorMessage extracts the most pertinent part of the error
// message for the table's error column. The failure logs keep the full
// context.
func extractKeyErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	errStr := stripansi.Strip(err.Error())

	// For stage failures the first line names the stage, exit status and
	// invocation, which is the useful part; stderr follows on later lines.
	if idx := strings.Index(errStr, "\n"); idx != -1 {
		errStr = errStr[:idx]
	}
	if len(errStr) > 80 {
		cut := 70
		// Back up to a rune boundary so the cut never splits a character
		for cut > 0 && !utf8.RuneStart(errStr[cut]) {
			cut--
		}
		return errStr[:cut] + "..."
	}
	return errStr
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
