package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_CallsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sweep.cue")
	other := filepath.Join(dir, "other.cue")
	require.NoError(t, os.WriteFile(path, []byte(`name: "a"`), 0o644))

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	calls := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, zerolog.Nop(), func() { calls <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`name: "b"`), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(`name: "c"`), 0o644))

	select {
	case <-calls:
	case <-time.After(5 * time.Second):
		t.Fatal("fn was not called after the sweep file changed")
	}

	// Both writes fall inside one debounce window.
	select {
	case <-calls:
		t.Fatal("fn called more than once for a burst of writes")
	case <-time.After(2 * reloadDelay):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(t.Context(), filepath.Join(t.TempDir(), "missing", "sweep.cue"), zerolog.Nop(), func() {})
	assert.Error(t, err)
}
