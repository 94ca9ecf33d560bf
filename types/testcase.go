package types

// TestSpec is a fully resolved test configuration. All "does this field
// exist" validation has already happened; the expected output has been
// loaded eagerly, so nothing here can fail for configuration reasons.
type TestSpec struct {
	// Name is the display name from the config's required `name` key.
	Name string
	// Code is the Craeft source compiled by the compiler under test.
	Code SourceSpec
	// Harness is the C source providing main() and the test scaffolding.
	Harness SourceSpec
	// ExpectedOutput is the exact byte sequence the produced executable
	// must write to stdout.
	ExpectedOutput []byte
}

// TestCase is a provisioned test: every file the pipeline touches exists
// or has a reserved path. It is consumed, unmutated, by the pipeline
// stages and torn down by the workspace that produced it.
type TestCase struct {
	Name           string
	Code           ResolvedSource
	Harness        ResolvedSource
	ExpectedOutput []byte

	// Intermediate artifacts, generated fresh per run and always owned
	// by the harness.
	CodeObject    string
	HarnessObject string
	Executable    string
}
