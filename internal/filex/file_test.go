package filex

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	tmp := t.TempDir()
	dir := filepath.Join(tmp, "cards")

	got, err := EnsureDir(dir)
	require.NoError(t, err)
	require.Equal(t, dir, got)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	// Idempotent.
	_, err = EnsureDir(dir)
	require.NoError(t, err)
}

func TestWriteFile(t *testing.T) {
	tmp := t.TempDir()

	path, err := WriteFile(tmp, "card_x_original.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "card_x_original.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)
}

func TestSweep_RemovesOnlyOldPrefixedFiles(t *testing.T) {
	tmp := t.TempDir()

	old := filepath.Join(tmp, "card_old.jpg")
	fresh := filepath.Join(tmp, "card_new.jpg")
	other := filepath.Join(tmp, "unrelated.jpg")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))
	require.NoError(t, os.Chtimes(other, stale, stale))

	removed, err := Sweep(tmp, "card_", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh, "recent files survive")
	assert.FileExists(t, other, "non-prefixed files survive")
}

func TestSweep_MissingDir(t *testing.T) {
	_, err := Sweep(filepath.Join(t.TempDir(), "nope"), "card_", time.Hour)
	require.Error(t, err)
}
