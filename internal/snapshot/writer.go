// Package snapshot writes the result documents the dashboard polls.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"marketscan/models"
)

// Write replaces the snapshot at path with the given results. The
// write goes through a temp file and rename so a reader never sees a
// half-written document.
func Write(path string, assets []models.ScoredAsset) error {
	if assets == nil {
		assets = []models.ScoredAsset{}
	}
	snap := models.Snapshot{
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Data:        assets,
	}
	return writeAtomic(path, snap)
}

// WriteFailure records a run-level failure. If a valid snapshot
// already exists at path it is left untouched, so the dashboard keeps
// the last good data instead of an error banner over nothing.
func WriteFailure(path string, message string) error {
	if hasValidSnapshot(path) {
		return nil
	}
	snap := models.Snapshot{
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Data:        []models.ScoredAsset{},
		Error:       message,
	}
	return writeAtomic(path, snap)
}

// Read loads a snapshot document, mainly for tests and tooling.
func Read(path string) (models.Snapshot, error) {
	var snap models.Snapshot
	data, err := os.ReadFile(path)
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parsing snapshot: %w", err)
	}
	return snap, nil
}

func hasValidSnapshot(path string) bool {
	snap, err := Read(path)
	if err != nil {
		return false
	}
	return snap.Error == "" && snap.LastUpdated != ""
}

func writeAtomic(path string, snap models.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
