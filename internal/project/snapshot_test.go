package project

import (
	"os"
	"path/filepath"
	"testing"
)

type counterState struct {
	Count int   `json:"count"`
	Trail []int `json:"trail"`
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap", "state.json")
	state := counterState{Count: 3, Trail: []int{1, 2, 3}}

	if err := SaveSnapshot(path, "Counter-v0", 7, 3, state); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	snap, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snap.Version != SnapshotVersion {
		t.Errorf("expected version %s, got %s", SnapshotVersion, snap.Version)
	}
	if snap.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if snap.Env != "Counter-v0" || snap.Seed != 7 || snap.Step != 3 {
		t.Errorf("unexpected header %+v", snap)
	}

	var decoded counterState
	if err := snap.DecodeState(&decoded); err != nil {
		t.Fatalf("DecodeState failed: %v", err)
	}
	if decoded.Count != 3 || len(decoded.Trail) != 3 {
		t.Errorf("expected %+v, got %+v", state, decoded)
	}
}

func TestLoadSnapshotMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"env": "x", "state": {}}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSnapshot(path); err == nil {
		t.Fatal("expected error for missing version, got nil")
	}
}

func TestLoadSnapshotMissingState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"version": "1.0.0"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSnapshot(path); err == nil {
		t.Fatal("expected error for missing state, got nil")
	}
}

func TestLoadSnapshotNotFound(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
