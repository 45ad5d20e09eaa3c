package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ArchiveState moves the session state directory to an archive with
// timestamp and returns the archive path. The next session starts fresh.
func ArchiveState(stateDir string, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Check if state directory exists
	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		return "", fmt.Errorf("state directory does not exist: %s", stateDir)
	}

	// Archives live next to the state directory
	archiveDir := filepath.Join(filepath.Dir(stateDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, "state-"+time.Now().Format("20060102-150405"))

	// Check if archive already exists (unlikely but possible)
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		archivePath = filepath.Join(archiveDir, "state-"+time.Now().Format("20060102-150405.000000"))
	}

	if err := os.Rename(stateDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive state directory: %w", err)
	}

	log.Named("archive").Info("State archived", zap.String("path", archivePath))
	return archivePath, nil
}
