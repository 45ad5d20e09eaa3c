package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/delimit/internal/testutil"
)

func TestArchiveState(t *testing.T) {
	tmpDir := t.TempDir()

	// Create state directory with a session and its backup
	stateDir := filepath.Join(tmpDir, "state")
	testutil.CreateTestFile(t, filepath.Join(stateDir, "state.json"), []byte(`{"conteudo": "a;b"}`))
	testutil.CreateTestFile(t, filepath.Join(stateDir, "state.json.bak"), []byte(`{}`))

	archivedPath, err := ArchiveState(stateDir, nil)
	if err != nil {
		t.Fatalf("ArchiveState failed: %v", err)
	}

	// Check that state directory no longer exists
	testutil.AssertFileNotExists(t, stateDir)

	archiveDir := filepath.Join(tmpDir, "archive")
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry in archive directory, got %d", len(entries))
	}

	// Verify the archived directory name (state-YYYYMMDD-HHMMSS)
	archivedName := entries[0].Name()
	if !strings.HasPrefix(archivedName, "state-") {
		t.Errorf("Archived directory name doesn't start with 'state-': %s", archivedName)
	}
	if parts := strings.Split(archivedName, "-"); len(parts) < 3 {
		t.Errorf("Invalid archive name format: %s", archivedName)
	}
	if archivedPath != filepath.Join(archiveDir, archivedName) {
		t.Errorf("ArchiveState returned %s, archive holds %s", archivedPath, archivedName)
	}

	testutil.AssertFileContains(t, filepath.Join(archivedPath, "state.json"), "a;b")
	testutil.AssertFileExists(t, filepath.Join(archivedPath, "state.json.bak"))
}

func TestArchiveState_NonExistentDirectory(t *testing.T) {
	_, err := ArchiveState(filepath.Join(t.TempDir(), "nonexistent"), nil)
	if err == nil {
		t.Fatal("Expected error for non-existent directory")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected 'does not exist' error, got: %v", err)
	}
}

func TestArchiveState_MultipleArchives(t *testing.T) {
	tmpDir := t.TempDir()
	stateDir := filepath.Join(tmpDir, "state")

	// Archive twice to ensure unique names
	for i := 0; i < 2; i++ {
		testutil.CreateTestFile(t, filepath.Join(stateDir, "state.json"), []byte{byte('0' + i)})

		// Small delay to ensure different timestamps
		if i == 1 {
			time.Sleep(10 * time.Millisecond)
		}

		if _, err := ArchiveState(stateDir, nil); err != nil {
			t.Fatalf("ArchiveState failed on iteration %d: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "archive"))
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}
	if entries[0].Name() == entries[1].Name() {
		t.Error("Archive names are not unique")
	}
}
