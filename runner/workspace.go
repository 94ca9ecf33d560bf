package runner

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"

	"github.com/craeft-lang/craeft-acceptor/types"
)

// Workspace owns every file a test case needs beyond pre-existing,
// non-owned sources: materialized inline sources and the three fresh
// intermediate artifacts. Release is idempotent and must be called exactly
// once per provisioned test case, on every outcome.
type Workspace struct {
	log   log.Logger
	owned []string
}

// NewWorkspace creates an empty workspace.
func NewWorkspace(logger log.Logger) *Workspace {
	if logger == nil {
		logger = log.New()
	}
	return &Workspace{log: logger}
}

// Provision materializes the spec into a runnable TestCase. Inline sources
// are written to fresh uniquely named temp files and tracked as owned;
// path-based sources pass through untouched. Three further fresh temp
// paths are reserved for the code object, harness object and executable.
func (w *Workspace) Provision(spec *types.TestSpec) (*types.TestCase, error) {
	code, err := w.provisionSource(spec.Code, "code")
	if err != nil {
		return nil, err
	}
	harness, err := w.provisionSource(spec.Harness, "harness")
	if err != nil {
		return nil, err
	}

	codeObj, err := w.tempPath("obj")
	if err != nil {
		return nil, err
	}
	harnessObj, err := w.tempPath("obj")
	if err != nil {
		return nil, err
	}
	executable, err := w.tempPath("exe")
	if err != nil {
		return nil, err
	}

	w.log.Debug("Provisioned test case",
		"name", spec.Name,
		"code", code.Path,
		"harness", harness.Path,
		"ownedFiles", len(w.owned))

	return &types.TestCase{
		Name:           spec.Name,
		Code:           code,
		Harness:        harness,
		ExpectedOutput: spec.ExpectedOutput,
		CodeObject:     codeObj,
		HarnessObject:  harnessObj,
		Executable:     executable,
	}, nil
}

// provisionSource turns a SourceSpec into a ResolvedSource, writing inline
// text to a fresh owned file.
func (w *Workspace) provisionSource(src types.SourceSpec, kind string) (types.ResolvedSource, error) {
	if !src.Inline {
		return types.ResolvedSource{Path: src.Path, Owned: false}, nil
	}

	path, err := w.tempPath(kind)
	if err != nil {
		return types.ResolvedSource{}, err
	}
	if err := os.WriteFile(path, []byte(src.Text), 0644); err != nil {
		return types.ResolvedSource{}, fmt.Errorf("writing inline %s source: %w", kind, err)
	}
	return types.ResolvedSource{Path: path, Owned: true}, nil
}

// tempPath reserves a fresh uniquely named file in the OS temp directory
// and tracks it for release. The file is created immediately so the name
// can never be reused within this process.
func (w *Workspace) tempPath(kind string) (string, error) {
	f, err := os.CreateTemp("", fmt.Sprintf("craeft-acceptor-%s-%s-*", kind, uuid.New().String()[:8]))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp file %s: %w", path, err)
	}
	w.owned = append(w.owned, path)
	return path, nil
}

// Release deletes every path this workspace allocated. A path that no
// longer exists is not an error, so Release is safe to call after partial
// provisioning or a failed pipeline. Non-owned sources are never tracked
// and therefore never deleted.
func (w *Workspace) Release() {
	for _, path := range w.owned {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			w.log.Warn("Failed to remove owned file", "path", path, "err", err)
		}
	}
	w.owned = nil
}
