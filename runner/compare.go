package runner

import (
	"bytes"

	"github.com/craeft-lang/craeft-acceptor/types"
)

// verifyOutput checks captured stdout against the expectation byte for
// byte. No trimming, no encoding normalization; the comparison is exact
// even when diagnostics later truncate for display.
func verifyOutput(expected, actual []byte) error {
	if bytes.Equal(expected, actual) {
		return nil
	}
	return types.NewVerificationError(expected, actual)
}
