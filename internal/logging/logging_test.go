package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/delimit/internal/testutil"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		conf    Config
		wantErr bool
	}{
		{Config{}, false},
		{Config{Level: LevelNone}, false},
		{Config{Level: LevelDebug, Mode: "append"}, false},
		{Config{Level: "verbose"}, true},
		{Config{Level: LevelNormal, Mode: "rotate"}, true},
	}

	for _, tt := range tests {
		err := tt.conf.Validate()
		if tt.wantErr {
			assert.Error(t, err, "%+v", tt.conf)
		} else {
			assert.NoError(t, err, "%+v", tt.conf)
		}
	}
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "delimit.log")

	log, err := New(Config{Level: LevelNone, File: path})
	require.NoError(t, err)

	log.Named("test").Debug("hello from test")
	require.NoError(t, log.Sync())

	testutil.AssertFileContains(t, path, "hello from test")
	testutil.AssertFileContains(t, path, "delimit.test")
}

func TestNewRejectsInvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}
