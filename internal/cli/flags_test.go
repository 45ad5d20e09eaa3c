package cli

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewFlags(t *testing.T) {
	flags := NewFlags()

	// Test default values
	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"LogLevel", flags.LogLevel, "normal"},
		{"CardsPerRow", flags.CardsPerRow, 3},
		{"CollectionPath", filepath.Base(flags.CollectionPath), "collection.anki2"},
		{"StatePath", filepath.Base(flags.StatePath), "state.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.got, tt.expected) {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.expected)
			}
		})
	}

	// Test string defaults (should be empty)
	stringTests := []struct {
		name  string
		value string
	}{
		{"CfgFile", flags.CfgFile},
		{"Language", flags.Language},
		{"LogFile", flags.LogFile},
		{"OutputFile", flags.OutputFile},
	}

	for _, tt := range stringTests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Errorf("%s = %v, want empty string", tt.name, tt.value)
			}
		})
	}

	if flags.Open {
		t.Error("Open = true, want false")
	}
}

func TestDefaultPaths(t *testing.T) {
	if !strings.Contains(DefaultCollectionPath(), filepath.Join(".local", "share", "delimit")) {
		t.Errorf("unexpected collection path %s", DefaultCollectionPath())
	}
	if !strings.Contains(DefaultStatePath(), filepath.Join(".local", "state", "delimit")) {
		t.Errorf("unexpected state path %s", DefaultStatePath())
	}
}
