package volume

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTarGzDirectoryRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "sub", "b.txt"), []byte("world"), 0o644))

	archivePath := filepath.Join(t.TempDir(), "backup.tar.gz")
	require.NoError(t, tarGzDirectory(srcDir, archivePath))

	destDir := t.TempDir()
	require.NoError(t, untarGz(archivePath, destDir))

	a, err := os.ReadFile(filepath.Join(destDir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(a))

	b, err := os.ReadFile(filepath.Join(destDir, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(b))
}

func TestWithinDir(t *testing.T) {
	assert.True(t, withinDir("/tmp/dest", "/tmp/dest/file.txt"))
	assert.True(t, withinDir("/tmp/dest", "/tmp/dest/sub/file.txt"))
	assert.False(t, withinDir("/tmp/dest", "/tmp/other/file.txt"))
	assert.False(t, withinDir("/tmp/dest", "/tmp/dest/../other/file.txt"))
}

func TestRestoreOutcome_OK(t *testing.T) {
	assert.True(t, RestoreOutcome{Restored: []string{"postgres_data"}, Skipped: []string{"redis_data"}}.OK())
	assert.False(t, RestoreOutcome{Restored: []string{"postgres_data"}, Failed: []string{"media_files"}}.OK())
	assert.True(t, RestoreOutcome{}.OK())
}
