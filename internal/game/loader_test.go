package game

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoster_SingleFile(t *testing.T) {
	path := createTempFile(t, "Alice\nBob\n\n  Charlie  \n")

	names, err := LoadRoster([]string{path})
	if err != nil {
		t.Fatalf("LoadRoster failed: %v", err)
	}

	expected := []string{"Alice", "Bob", "Charlie"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d names, got %d: %q", len(expected), len(names), names)
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Name %d: expected %q, got %q", i, name, names[i])
		}
	}
}

func TestLoadRoster_Comments(t *testing.T) {
	path := createTempFile(t, "# Friday table\nDana\n   # away this week\nEli")

	names, err := LoadRoster([]string{path})
	if err != nil {
		t.Fatalf("LoadRoster failed: %v", err)
	}
	if len(names) != 2 || names[0] != "Dana" || names[1] != "Eli" {
		t.Errorf("Unexpected names: %q", names)
	}
}

func TestLoadRoster_Directory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Alice\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("Bob\nCharlie\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}

	names, err := LoadRoster([]string{dir})
	if err != nil {
		t.Fatalf("LoadRoster failed: %v", err)
	}
	// os.ReadDir returns entries sorted by filename
	if len(names) != 3 || names[0] != "Alice" || names[2] != "Charlie" {
		t.Errorf("Unexpected names: %q", names)
	}
}

func TestLoadRoster_MissingPath(t *testing.T) {
	_, err := LoadRoster([]string{filepath.Join(t.TempDir(), "nope.txt")})
	if err == nil {
		t.Error("Expected error for missing path, got nil")
	}
}

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "players.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}
