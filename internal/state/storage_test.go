package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"yaniv/internal/scoring"
)

func TestJSONFileStorage_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "nested", "game.json")

	storage, err := NewJSONFileStorage(testPath)
	if err != nil {
		t.Fatalf("NewJSONFileStorage returned error: %v", err)
	}

	// 1. Load on a non-existent file returns no snapshot
	snap, err := storage.Load()
	if err != nil {
		t.Errorf("Load on non-existent file returned error: %v", err)
	}
	if snap != nil {
		t.Errorf("Expected nil snapshot, got %+v", snap)
	}

	// 2. Save
	saved := Snapshot{
		Players: []scoring.Player{
			{ID: "a", Name: "Alice", Total: 12},
			{ID: "b", Name: "Bob", Total: 104, Eliminated: true},
		},
		History: History{{
			Input: scoring.RoundInput{
				CallerID: "a",
				Sums:     []scoring.HandSum{{PlayerID: "a", Sum: 2}, {PlayerID: "b", Sum: 9}},
			},
			Outcome: scoring.RoundOutcome{
				Penalties: map[scoring.PlayerID]int{"a": 0, "b": 9},
				CallerID:  "a",
			},
			TotalsBefore:    map[scoring.PlayerID]int{"a": 12, "b": 95},
			TotalsAfter:     map[scoring.PlayerID]int{"a": 12, "b": 104},
			EliminatedAfter: []scoring.PlayerID{"b"},
			Timestamp:       time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC),
		}},
		Settings: Settings{AsafOnTie: true, Persistence: true, DarkMode: true},
	}
	if err := storage.Save(saved); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if _, err := os.Stat(testPath); os.IsNotExist(err) {
		t.Errorf("File was not created at %s", testPath)
	}

	// 3. Load again returns the saved snapshot
	loaded, err := storage.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected a snapshot, got nil")
	}
	if len(loaded.Players) != 2 || loaded.Players[1].Total != 104 || !loaded.Players[1].Eliminated {
		t.Errorf("Players mismatch. Got: %+v", loaded.Players)
	}
	if loaded.Settings != saved.Settings {
		t.Errorf("Settings mismatch. Got: %+v", loaded.Settings)
	}
	if len(loaded.History) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(loaded.History))
	}
	entry := loaded.History[0]
	if entry.TotalsAfter["b"] != 104 || entry.TotalsBefore["b"] != 95 {
		t.Errorf("Totals mismatch. Got: %+v", entry)
	}
	if !entry.Timestamp.Equal(saved.History[0].Timestamp) {
		t.Errorf("Timestamp mismatch. Got %v", entry.Timestamp)
	}
	if entry.Outcome.HasAsaf() {
		t.Error("Expected no asaf after round trip")
	}

	// 4. Clear removes the file, twice is fine
	if err := storage.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if err := storage.Clear(); err != nil {
		t.Fatalf("Second Clear returned error: %v", err)
	}
	if snap, _ := storage.Load(); snap != nil {
		t.Error("Expected nil snapshot after Clear")
	}
}

func TestJSONFileStorage_CorruptFile(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "corrupt.json")

	// Write garbage to file
	if err := os.WriteFile(testPath, []byte("{ not valid json }"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	storage := &JSONFileStorage{path: testPath}

	if _, err := storage.Load(); err == nil {
		t.Error("Expected error when loading corrupt file, got nil")
	}
}

func TestJSONFileStorage_EmptyFile(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "empty.json")

	if err := os.WriteFile(testPath, []byte(""), 0644); err != nil {
		t.Fatalf("Failed to write empty file: %v", err)
	}

	storage := &JSONFileStorage{path: testPath}

	snap, err := storage.Load()
	if err != nil {
		t.Errorf("Load on empty file returned error: %v", err)
	}
	if snap != nil {
		t.Errorf("Expected nil snapshot from empty file, got %+v", snap)
	}
}
