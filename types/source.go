package types

// SourceSpec describes one input artifact as declared in a test config,
// before any file has been materialized. Exactly one of Path or Text is
// set; the registry enforces this at resolve time.
type SourceSpec struct {
	// Path is the absolute path of a pre-existing file on disk.
	Path string
	// Text is inline content to be written to a fresh temporary file
	// during provisioning.
	Text string
	// Inline is true when Text carries the content.
	Inline bool
}

// ResolvedSource is one input artifact after provisioning.
type ResolvedSource struct {
	// Path is the absolute filesystem path of the source file.
	Path string
	// Owned reports whether the harness created the file from inline
	// text. Owned files are deleted on teardown; non-owned files are
	// never touched.
	Owned bool
}
