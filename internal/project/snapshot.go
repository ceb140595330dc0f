package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SnapshotVersion is written into every snapshot file.
const SnapshotVersion = "1.0.0"

// Snapshot is an environment state saved to disk, e.g. the last state of a
// benchmark episode. State is kept raw so callers decode it into the state
// type of the named environment.
type Snapshot struct {
	Version   string          `json:"version"`
	CreatedAt string          `json:"created_at"`
	Env       string          `json:"env"`
	Seed      int64           `json:"seed"`
	Step      int             `json:"step"`
	State     json.RawMessage `json:"state"`
}

// SaveSnapshot writes state as a JSON snapshot at path.
func SaveSnapshot(path, envName string, seed int64, step int, state any) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	snap := Snapshot{
		Version:   SnapshotVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Env:       envName,
		Seed:      seed,
		Step:      step,
		State:     raw,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	if snap.Version == "" {
		return Snapshot{}, fmt.Errorf("invalid snapshot file: missing version field")
	}
	if len(snap.State) == 0 {
		return Snapshot{}, fmt.Errorf("invalid snapshot file: missing state")
	}
	return snap, nil
}

// DecodeState unmarshals the snapshot state into v.
func (s Snapshot) DecodeState(v any) error {
	if err := json.Unmarshal(s.State, v); err != nil {
		return fmt.Errorf("failed to decode %s state: %w", s.Env, err)
	}
	return nil
}
