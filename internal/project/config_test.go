package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultRunConfig()
	cfg.Env = "BinPack-rand20-v0"
	cfg.Seed = 42
	cfg.Steps = 500
	cfg.TimeUnit = "s"
	cfg.Output.Trace = "trace.jsonl.zst"

	if err := SaveRunConfig(path, cfg); err != nil {
		t.Fatalf("SaveRunConfig failed: %v", err)
	}

	loaded, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}

	if loaded.Env != "BinPack-rand20-v0" {
		t.Errorf("expected Env=BinPack-rand20-v0, got %s", loaded.Env)
	}
	if loaded.Seed != 42 || loaded.Steps != 500 {
		t.Errorf("expected seed 42 and 500 steps, got %d and %d", loaded.Seed, loaded.Steps)
	}
	if loaded.TimeUnit != "s" {
		t.Errorf("expected TimeUnit=s, got %s", loaded.TimeUnit)
	}
	if loaded.Output.Trace != "trace.jsonl.zst" {
		t.Errorf("expected trace path, got %q", loaded.Output.Trace)
	}
	if loaded.Instance.MaxNumEMS != 40 {
		t.Errorf("expected default MaxNumEMS=40, got %d", loaded.Instance.MaxNumEMS)
	}
}

func TestLoadRunConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.yaml")

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.Env != "BinPack-toy-v0" || cfg.Episodes != 10 || cfg.TimeUnit != "ms" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadRunConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "env: CVRP20-v0\ninstance:\n  container: [100, 50, 40]\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig failed: %v", err)
	}
	if cfg.Env != "CVRP20-v0" {
		t.Errorf("expected Env=CVRP20-v0, got %s", cfg.Env)
	}
	if cfg.Episodes != 10 {
		t.Errorf("expected default Episodes=10, got %d", cfg.Episodes)
	}
	if len(cfg.Instance.Container) != 3 || cfg.Instance.Container[0] != 100 {
		t.Errorf("unexpected container %v", cfg.Instance.Container)
	}
}

func TestValidateRunConfig(t *testing.T) {
	tests := []struct {
		name string
		data string
		ok   bool
	}{
		{"empty", "", true},
		{"valid", "env: TSP-v1\nepisodes: 3\ntime_unit: s\n", true},
		{"unknown key", "env: TSP-v1\nepisode: 3\n", false},
		{"bad time unit", "time_unit: minutes\n", false},
		{"negative episodes", "episodes: -1\n", false},
		{"short container", "instance:\n  container: [1, 2]\n", false},
		{"zero extent", "instance:\n  container: [1, 0, 2]\n", false},
		{"not yaml", "env: [unclosed\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRunConfig([]byte(tt.data))
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected an error, got nil")
			}
		})
	}
}

func TestLoadRunConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("time_unit: hours\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadRunConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid config, got nil")
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("expected error to name the file, got %v", err)
	}
}

func TestSaveRunConfigCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.yaml")

	if err := SaveRunConfig(path, DefaultRunConfig()); err != nil {
		t.Fatalf("SaveRunConfig failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	if !strings.HasSuffix(DefaultConfigPath(), filepath.Join(".jumanji", "config.yaml")) {
		t.Errorf("unexpected default path %s", DefaultConfigPath())
	}
}
