package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Library.DiffWindow != 3 {
		t.Errorf("expected DiffWindow=3, got %d", cfg.Library.DiffWindow)
	}
	if len(cfg.Library.Includes) != 1 || cfg.Library.Includes[0] != "**/*.signature" {
		t.Errorf("unexpected includes: %v", cfg.Library.Includes)
	}
	if cfg.Match.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Match.Workers)
	}
	if cfg.Match.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Match.TopK)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected Format=text, got %s", cfg.Output.Format)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "crashsig.yaml")

	content := `
library:
  diff_window: 6
match:
  workers: 2
  max_distance_ratio: 0.5
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Library.DiffWindow != 6 {
		t.Errorf("expected DiffWindow=6, got %d", cfg.Library.DiffWindow)
	}
	if cfg.Match.Workers != 2 {
		t.Errorf("expected Workers=2, got %d", cfg.Match.Workers)
	}
	if cfg.Match.MaxDistanceRatio != 0.5 {
		t.Errorf("expected MaxDistanceRatio=0.5, got %f", cfg.Match.MaxDistanceRatio)
	}
	// untouched sections keep their defaults
	if cfg.Match.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Match.TopK)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "crashsig.yaml")
	if err := os.WriteFile(configPath, []byte("match: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	if err := EnsureDir(tmpDir); err != nil {
		t.Fatal(err)
	}
	configPath := filepath.Join(tmpDir, ".crashsig", "config.yaml")

	content := `
output:
  format: json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Output.Format != "json" {
		t.Errorf("expected Format=json, got %s", cfg.Output.Format)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crashsig.yaml")
	cfg := DefaultConfig()
	cfg.Match.TopK = 9

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Match.TopK != 9 {
		t.Errorf("expected TopK=9, got %d", loaded.Match.TopK)
	}
}

func TestLibraryDBPath(t *testing.T) {
	path := LibraryDBPath("/home/user/signatures")
	expected := filepath.Join("/home/user/signatures", ".crashsig", "library.db")
	if path != expected {
		t.Errorf("expected %s, got %s", expected, path)
	}
}
