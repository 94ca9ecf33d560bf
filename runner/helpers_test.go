package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

// The tests below never touch a real compiler. Stub shell scripts stand in
// for craeftc and cc: the fake craeftc copies its source to the object
// path, the fake cc copies the harness in compile mode and in link mode
// concatenates both objects under a shell shebang so the "executable" is a
// script whose output is whatever the sources say.

const stubCraeftc = `#!/bin/sh
# usage: craeftc <src> --obj <out>
cp "$1" "$3"
`

const stubFailingCraeftc = `#!/bin/sh
echo 'syntax error: unexpected token' >&2
exit 1
`

const stubCC = `#!/bin/sh
if [ -n "$STUB_CC_LOG" ]; then
    echo "$@" >> "$STUB_CC_LOG"
fi
mode=link
for a in "$@"; do
    [ "$a" = "-c" ] && mode=compile
done
if [ "$mode" = "compile" ]; then
    prev=""
    src=""
    out=""
    while [ $# -gt 0 ]; do
        case "$1" in
            -c) src=$prev ;;
            -o) out=$2 ;;
        esac
        prev=$1
        shift
    done
    cp "$src" "$out"
else
    obj1=$1
    obj2=$2
    out=""
    while [ $# -gt 0 ]; do
        [ "$1" = "-o" ] && out=$2
        shift
    done
    { printf '#!/bin/sh\n'; cat "$obj1" "$obj2"; } > "$out"
    chmod +x "$out"
fi
`

const stubFailingCC = `#!/bin/sh
echo 'undefined reference' >&2
exit 1
`

// writeStub writes an executable stub tool and returns its path.
func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// writeFile writes a plain file and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

// newStubPipeline wires a pipeline against stub tools in dir.
func newStubPipeline(t *testing.T, dir string, compilerScript, ccScript string, ccFlags ...string) *Pipeline {
	t.Helper()
	p, err := NewPipeline(PipelineConfig{
		Compiler: writeStub(t, dir, "craeftc", compilerScript),
		CC:       writeStub(t, dir, "cc", ccScript),
		CCFlags:  ccFlags,
		Log:      testLogger(),
	})
	require.NoError(t, err)
	return p
}
