// Package project loads run configurations and saves episode snapshots.
package project

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed runconfig.schema.json
var runConfigSchema string

// InstanceConfig points a bin-packing run at an instance file instead of a
// registered environment.
type InstanceConfig struct {
	Path      string    `yaml:"path,omitempty" json:"path,omitempty"`
	MaxNumEMS int       `yaml:"max_num_ems,omitempty" json:"max_num_ems,omitempty"`
	ObsNumEMS int       `yaml:"obs_num_ems,omitempty" json:"obs_num_ems,omitempty"`
	Container []float64 `yaml:"container,omitempty" json:"container,omitempty"` // x, y, z extents
}

// OutputConfig names the sinks of a run. Empty paths are disabled.
type OutputConfig struct {
	Trace     string `yaml:"trace,omitempty" json:"trace,omitempty"`
	ResultsDB string `yaml:"results_db,omitempty" json:"results_db,omitempty"`
	ReportDir string `yaml:"report_dir,omitempty" json:"report_dir,omitempty"`
}

// RunConfig configures a benchmark run.
type RunConfig struct {
	Env      string `yaml:"env" json:"env"`
	Seed     int64  `yaml:"seed" json:"seed"`
	Episodes int    `yaml:"episodes" json:"episodes"`
	// Steps switches the run to step mode when positive.
	Steps    int            `yaml:"steps" json:"steps"`
	TimeUnit string         `yaml:"time_unit" json:"time_unit"`
	Instance InstanceConfig `yaml:"instance,omitempty" json:"instance,omitempty"`
	Output   OutputConfig   `yaml:"output,omitempty" json:"output,omitempty"`
}

// DefaultRunConfig returns the configuration used when no file exists.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Env:      "BinPack-toy-v0",
		Episodes: 10,
		TimeUnit: "ms",
		Instance: InstanceConfig{MaxNumEMS: 40},
	}
}

// DefaultConfigDir returns the default directory for run configuration,
// ~/.jumanji on all platforms.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".jumanji")
}

// DefaultConfigPath returns the default path for the run config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// SaveRunConfig persists a RunConfig to the given path as YAML.
// It creates any missing parent directories automatically.
func SaveRunConfig(path string, cfg RunConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadRunConfig reads a RunConfig from the given path. Fields missing from
// the file keep their defaults. If the file does not exist, it returns
// DefaultRunConfig with no error.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return RunConfig{}, err
	}
	if err := ValidateRunConfig(data); err != nil {
		return RunConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ValidateRunConfig checks a YAML document against the run config schema.
// Unknown keys are rejected.
func ValidateRunConfig(data []byte) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if raw == nil {
		return nil
	}

	// Round-trip through JSON so numbers and maps take the shapes the
	// validator expects.
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	schema, err := jsonschema.CompileString("runconfig.schema.json", runConfigSchema)
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
