package cli

import (
	"os"
	"path/filepath"
)

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile        string
	CollectionPath string
	StatePath      string
	Language       string
	LogLevel       string
	LogFile        string

	// Export flags
	OutputFile  string
	CardsPerRow int
	Open        bool
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		CollectionPath: DefaultCollectionPath(),
		StatePath:      DefaultStatePath(),
		LogLevel:       "normal",
		CardsPerRow:    3,
	}
}

// DefaultCollectionPath is ~/.local/share/delimit/collection.anki2
func DefaultCollectionPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "delimit", "collection.anki2")
}

// DefaultStatePath is ~/.local/state/delimit/state/state.json
func DefaultStatePath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "delimit", "state", "state.json")
}
