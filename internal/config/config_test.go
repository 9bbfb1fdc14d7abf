package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test tool defaults
	if len(cfg.Tools.RepairCommand) == 0 || cfg.Tools.RepairCommand[0] != "admesh" {
		t.Errorf("expected admesh repair command, got %v", cfg.Tools.RepairCommand)
	}
	if len(cfg.Tools.RemeshCommand) == 0 || cfg.Tools.RemeshCommand[0] != "acvd" {
		t.Errorf("expected acvd remesh command, got %v", cfg.Tools.RemeshCommand)
	}

	// Test remesh defaults
	if cfg.Remesh.Nodes != 1000 {
		t.Errorf("expected nodes 1000, got %d", cfg.Remesh.Nodes)
	}
	if !cfg.Remesh.Binary {
		t.Error("expected binary output by default")
	}
	if !cfg.Remesh.CheckOrientation {
		t.Error("expected check_orientation to be true by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "remesh.yaml")

	yamlContent := `
tools:
  repair_command: ["meshfix", "{input}", "-o", "{output}"]
  remesh_command: ["acvdq", "{input}", "{output}", "{count}", "{subdivisions}"]

remesh:
  nodes: 5000
  binary: false
  check_orientation: false

logging:
  level: "debug"
  log_file: "remesh.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if got := cfg.Tools.RepairCommand[0]; got != "meshfix" {
		t.Errorf("expected repair command meshfix, got %s", got)
	}
	if got := len(cfg.Tools.RemeshCommand); got != 5 {
		t.Errorf("expected 5 remesh argv entries, got %d", got)
	}

	if cfg.Remesh.Nodes != 5000 {
		t.Errorf("expected nodes 5000, got %d", cfg.Remesh.Nodes)
	}
	if cfg.Remesh.Binary {
		t.Error("expected binary to be false")
	}
	if cfg.Remesh.CheckOrientation {
		t.Error("expected check_orientation to be false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "remesh.log" {
		t.Errorf("expected log file remesh.log, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadPartialFile(t *testing.T) {
	// A file that only sets one section keeps defaults for the rest.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "remesh.yaml")

	yamlContent := `
remesh:
  nodes: 250
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Remesh.Nodes != 250 {
		t.Errorf("expected nodes 250, got %d", cfg.Remesh.Nodes)
	}
	if len(cfg.Tools.RepairCommand) == 0 || cfg.Tools.RepairCommand[0] != "admesh" {
		t.Errorf("expected default repair command to survive, got %v", cfg.Tools.RepairCommand)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")

	if err := os.WriteFile(configPath, []byte("remesh:\n  nodes: 42\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Remesh.Nodes != 42 {
		t.Errorf("expected nodes 42, got %d", cfg.Remesh.Nodes)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config path")
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "sub", "remesh.yaml")

	cfg := Default()
	cfg.Remesh.Nodes = 777

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload saved config: %v", err)
	}
	if loaded.Remesh.Nodes != 777 {
		t.Errorf("expected nodes 777 after round-trip, got %d", loaded.Remesh.Nodes)
	}
}
