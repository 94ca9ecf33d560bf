package acceptor

import (
	"github.com/craeft-lang/craeft-acceptor/types"
)

// getResultString returns a symbol-prefixed string representing a result
func getResultString(status types.TestStatus) string {
	if status == types.TestStatusPass {
		return "✓ pass"
	}
	return "✗ fail"
}
