package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"marketscan/models"
)

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto.json")
	assets := []models.ScoredAsset{
		{Asset: models.Asset{Symbol: "BTC", Price: 50000}, Score: 72, Message: "bullish — good technicals and sentiment"},
	}

	if err := Write(path, assets); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	snap, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if snap.LastUpdated == "" {
		t.Error("LastUpdated is empty")
	}
	if snap.Error != "" {
		t.Errorf("Error = %q, want empty", snap.Error)
	}
	if len(snap.Data) != 1 || snap.Data[0].Symbol != "BTC" {
		t.Errorf("Data = %+v, want the BTC entry", snap.Data)
	}
}

func TestWriteNilResultsStaysParseable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto.json")
	if err := Write(path, nil); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	snap, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if snap.Data == nil {
		t.Error("Data marshals as null, dashboard expects []")
	}
}

func TestWriteFailureWhenNoSnapshotExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto.json")
	if err := WriteFailure(path, "upstream unavailable"); err != nil {
		t.Fatalf("WriteFailure() error: %v", err)
	}
	snap, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if snap.Error != "upstream unavailable" {
		t.Errorf("Error = %q, want the failure message", snap.Error)
	}
	if len(snap.Data) != 0 {
		t.Errorf("Data = %+v, want empty", snap.Data)
	}
}

func TestWriteFailureKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto.json")
	good := []models.ScoredAsset{{Asset: models.Asset{Symbol: "BTC"}, Score: 70}}
	if err := Write(path, good); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	if err := WriteFailure(path, "upstream unavailable"); err != nil {
		t.Fatalf("WriteFailure() error: %v", err)
	}

	snap, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if snap.Error != "" {
		t.Error("failure snapshot clobbered the last good data")
	}
	if len(snap.Data) != 1 {
		t.Errorf("Data lost: %+v", snap.Data)
	}
}

func TestWriteFailureReplacesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crypto.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFailure(path, "upstream unavailable"); err != nil {
		t.Fatalf("WriteFailure() error: %v", err)
	}
	snap, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if snap.Error != "upstream unavailable" {
		t.Errorf("Error = %q, want the failure message", snap.Error)
	}
}
