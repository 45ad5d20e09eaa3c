package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunCallsHandlerOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cards.txt")
	require.NoError(t, os.WriteFile(path, []byte("a;b"), 0644))

	called := make(chan struct{}, 10)
	w := New(path, func(ctx context.Context) error {
		called <- struct{}{}
		return nil
	}, nil)
	w.SetDelay(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	// Changes to other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("c;d"), 0644))

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunKeepsWatchingAfterHandlerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	var calls atomic.Int32
	w := New(path, func(ctx context.Context) error {
		calls.Add(1)
		return errors.New("render failed")
	}, nil)
	w.SetDelay(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0644))
		time.Sleep(200 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 20*time.Millisecond)
}

func TestRunMissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing", "cards.txt"), func(context.Context) error { return nil }, nil)
	require.Error(t, w.Run(context.Background()))
}
