// Package config loads the compiler's project-level configuration file:
// a `jsac.yaml` sitting next to go.mod, marking the project root.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds every knob the driver needs before it can construct a
// loader.Registry and run inference (spec §4.E project root, §4.F
// iteration cap, §6 emission format).
type Config struct {
	// ProjectRoot is the directory import paths are resolved relative to
	// when they aren't `.`-relative (spec §4.E).
	ProjectRoot string `yaml:"project_root"`

	// SearchPaths are additional directories consulted after ProjectRoot
	// fails to resolve an import.
	SearchPaths []string `yaml:"search_paths"`

	// MaxInferenceIterations caps the Pass 2-4 fixed-point loop (spec §4.F,
	// default 100; spec's own hard cap).
	MaxInferenceIterations int `yaml:"max_inference_iterations"`

	// MaxConstDepth caps const-evaluation recursion (spec §4.C, default 100).
	MaxConstDepth int `yaml:"max_const_depth"`

	// EmitFormat selects the lowering driver's output: "ir" or "object"
	// (spec §4.H, §EXTERNAL INTERFACES).
	EmitFormat string `yaml:"emit_format"`

	// DiagnosticFormat selects how diag.Report values are rendered:
	// "text" or "json" (spec §6).
	DiagnosticFormat string `yaml:"diagnostic_format"`

	// NoColor disables ANSI color in the text diagnostic renderer.
	NoColor bool `yaml:"no_color"`
}

// Default returns the configuration used when none of the recognized
// config files (see fileNames) is present.
func Default() *Config {
	return &Config{
		ProjectRoot:            ".",
		MaxInferenceIterations: 100,
		MaxConstDepth:          100,
		EmitFormat:             "ir",
		DiagnosticFormat:       "text",
	}
}

// fileNames are the recognized config file names, checked in order.
var fileNames = []string{"jsac.yaml", "jsac.yml", ".jsac.yaml"}

// Load reads a config file from dir, or returns Default() if none of the
// recognized file names exist there.
func Load(dir string) (*Config, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		cfg := Default()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if cfg.ProjectRoot == "" || cfg.ProjectRoot == "." {
			cfg.ProjectRoot = dir
		}
		return cfg, cfg.Validate()
	}
	cfg := Default()
	cfg.ProjectRoot = dir
	return cfg, nil
}

// FindProjectRoot walks upward from dir looking for a recognized config
// file or a go.mod, falling back to dir itself.
func FindProjectRoot(dir string) string {
	cur := dir
	for {
		for _, name := range fileNames {
			if _, err := os.Stat(filepath.Join(cur, name)); err == nil {
				return cur
			}
		}
		if _, err := os.Stat(filepath.Join(cur, "go.mod")); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return dir
		}
		cur = parent
	}
}

// Validate rejects a config with values the rest of the pipeline cannot
// honor (spec's hard caps at §4.C/§4.F are 100; a config may only lower
// that bound, never raise it).
func (c *Config) Validate() error {
	if c.MaxInferenceIterations <= 0 || c.MaxInferenceIterations > 100 {
		return fmt.Errorf("max_inference_iterations must be in (0, 100], got %d", c.MaxInferenceIterations)
	}
	if c.MaxConstDepth <= 0 || c.MaxConstDepth > 100 {
		return fmt.Errorf("max_const_depth must be in (0, 100], got %d", c.MaxConstDepth)
	}
	switch c.EmitFormat {
	case "ir", "object":
	default:
		return fmt.Errorf("emit_format must be %q or %q, got %q", "ir", "object", c.EmitFormat)
	}
	switch c.DiagnosticFormat {
	case "text", "json":
	default:
		return fmt.Errorf("diagnostic_format must be %q or %q, got %q", "text", "json", c.DiagnosticFormat)
	}
	return nil
}
