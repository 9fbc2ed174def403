package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxInferenceIterations != 100 {
		t.Fatalf("want default iteration cap 100, got %d", cfg.MaxInferenceIterations)
	}
	if cfg.ProjectRoot != dir {
		t.Fatalf("want project root %s, got %s", dir, cfg.ProjectRoot)
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	content := "max_inference_iterations: 10\nemit_format: object\ndiagnostic_format: json\n"
	if err := os.WriteFile(filepath.Join(dir, "jsac.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxInferenceIterations != 10 {
		t.Fatalf("want 10, got %d", cfg.MaxInferenceIterations)
	}
	if cfg.EmitFormat != "object" {
		t.Fatalf("want object, got %s", cfg.EmitFormat)
	}
}

func TestLoadRejectsIterationCapAboveHardLimit(t *testing.T) {
	dir := t.TempDir()
	content := "max_inference_iterations: 500\n"
	if err := os.WriteFile(filepath.Join(dir, "jsac.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatalf("want an error for an iteration cap above the hard limit")
	}
}

func TestFindProjectRootWalksUpToConfig(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "jsac.yaml"), []byte("project_root: .\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	got := FindProjectRoot(sub)
	if got != root {
		t.Fatalf("want %s, got %s", root, got)
	}
}
