package types

// Stage identifies one step of the build/execute pipeline.
type Stage string

const (
	StageCompileCraeft  Stage = "compile-craeft"
	StageCompileHarness Stage = "compile-harness"
	StageLink           Stage = "link"
	StageExecute        Stage = "execute"
)

func (s Stage) String() string {
	return string(s)
}
