package dataset

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := writeFiles(t, map[string]string{"hour.csv": hourCSV, "notes.txt": "x"})
	target := filepath.Join(dir, "hour.csv")

	var calls atomic.Int32
	w, err := NewWatcher([]string{target}, 50*time.Millisecond, func(context.Context) {
		calls.Add(1)
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("y"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte(hourCSV), 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher([]string{"/nonexistent/dir/hour.csv"}, time.Millisecond, func(context.Context) {})
	assert.Error(t, err)
}
