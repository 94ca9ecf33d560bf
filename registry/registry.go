package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/craeft-lang/craeft-acceptor/types"
)

// ConfigSuffix is the filename suffix that marks a test configuration in
// the test directory.
const ConfigSuffix = ".yaml"

// Registry discovers integration-test configs and resolves them into
// validated test specs.
type Registry struct {
	config Config
}

// Config contains registry configuration.
type Config struct {
	Log log.Logger
	// TestDir is the directory holding the *.yaml test configs and the
	// source/output files they reference by relative path.
	TestDir string
}

// NewRegistry creates a new registry instance.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.TestDir == "" {
		return nil, fmt.Errorf("test directory is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	info, err := os.Stat(cfg.TestDir)
	if err != nil {
		return nil, fmt.Errorf("stat test directory %q: %w", cfg.TestDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test directory %q is not a directory", cfg.TestDir)
	}

	return &Registry{config: cfg}, nil
}

// GetConfig returns the registry configuration.
func (r *Registry) GetConfig() Config {
	return r.config
}

// DiscoverConfigs returns the paths of all test configs in the test
// directory, in directory-listing order. The order is not part of the
// contract; os.ReadDir happens to sort lexicographically.
func (r *Registry) DiscoverConfigs() ([]string, error) {
	entries, err := os.ReadDir(r.config.TestDir)
	if err != nil {
		return nil, fmt.Errorf("reading test directory: %w", err)
	}

	var configs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ConfigSuffix) {
			continue
		}
		configs = append(configs, filepath.Join(r.config.TestDir, entry.Name()))
	}

	r.config.Log.Debug("Discovered test configs", "dir", r.config.TestDir, "count", len(configs))
	return configs, nil
}

// rawConfig mirrors the YAML shape of a test config. Each logical field
// has a path-valued key and an inline-text variant.
type rawConfig struct {
	Name        string  `yaml:"name"`
	Code        *string `yaml:"code"`
	CodeText    *string `yaml:"code_text"`
	Harness     *string `yaml:"harness"`
	HarnessText *string `yaml:"harness_text"`
	Output      *string `yaml:"output"`
	OutputText  *string `yaml:"output_text"`
}

// ResolveSpec loads one test config and resolves it into a TestSpec.
// Validation is eager: every field-presence check happens here, and the
// expected output is read immediately rather than at comparison time.
// Structural problems return a ConfigError; anything else (an unreadable
// file, malformed YAML reaching the parser's own limits) is returned as-is.
func (r *Registry) ResolveSpec(path string) (*types.TestSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, types.NewConfigError("config", fmt.Sprintf("parsing %s: %v", filepath.Base(path), err))
	}

	if raw.Name == "" {
		return nil, types.NewConfigError("name", "required key is absent")
	}

	code, err := r.resolveSource("code", raw.Code, raw.CodeText)
	if err != nil {
		return nil, err
	}
	harness, err := r.resolveSource("harness", raw.Harness, raw.HarnessText)
	if err != nil {
		return nil, err
	}
	expected, err := r.resolveOutput(raw.Output, raw.OutputText)
	if err != nil {
		return nil, err
	}

	r.config.Log.Debug("Resolved test spec",
		"config", filepath.Base(path),
		"name", raw.Name,
		"codeInline", code.Inline,
		"harnessInline", harness.Inline,
		"expectedBytes", len(expected))

	return &types.TestSpec{
		Name:           raw.Name,
		Code:           code,
		Harness:        harness,
		ExpectedOutput: expected,
	}, nil
}

// resolveSource enforces the exactly-one-of {path, inline text} rule for a
// source field. Path values are relative to the test directory.
func (r *Registry) resolveSource(field string, path, text *string) (types.SourceSpec, error) {
	switch {
	case path != nil && text != nil:
		return types.SourceSpec{}, types.NewConfigError(field, fmt.Sprintf("both %s and %s_text specified", field, field))
	case path == nil && text == nil:
		return types.SourceSpec{}, types.NewConfigError(field, fmt.Sprintf("exactly one of %s or %s_text is required", field, field))
	case path != nil:
		abs, err := filepath.Abs(filepath.Join(r.config.TestDir, *path))
		if err != nil {
			return types.SourceSpec{}, fmt.Errorf("resolving %s path %q: %w", field, *path, err)
		}
		return types.SourceSpec{Path: abs}, nil
	default:
		return types.SourceSpec{Text: *text, Inline: true}, nil
	}
}

// resolveOutput loads the expected output bytes, from the referenced file
// or directly from the inline text.
func (r *Registry) resolveOutput(path, text *string) ([]byte, error) {
	switch {
	case path != nil && text != nil:
		return nil, types.NewConfigError("output", "both output and output_text specified")
	case path == nil && text == nil:
		return nil, types.NewConfigError("output", "exactly one of output or output_text is required")
	case path != nil:
		data, err := os.ReadFile(filepath.Join(r.config.TestDir, *path))
		if err != nil {
			return nil, fmt.Errorf("reading expected output: %w", err)
		}
		return data, nil
	default:
		return []byte(*text), nil
	}
}
