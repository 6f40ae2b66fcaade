package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".dockertree"), 0o755))

	nested := filepath.Join(root, "worktrees", "feature-auth", "src")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindProjectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindProjectRoot_NotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := FindProjectRoot(dir)
	assert.Error(t, err)
}

func TestWorktreePath(t *testing.T) {
	got := WorktreePath("/srv/app", "worktrees", "feature-auth")
	assert.Equal(t, filepath.Join("/srv/app", "worktrees", "feature-auth"), got)
}

func TestEnvFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/wt", ".env"), EnvFilePath("/wt"))
}

func TestEnvDockertreeFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/wt", ".dockertree", "env.dockertree"), EnvDockertreeFilePath("/wt"))
}

func TestCopyEnvFile(t *testing.T) {
	t.Run("copies when source exists", func(t *testing.T) {
		source := t.TempDir()
		target := t.TempDir()
		require.NoError(t, os.WriteFile(EnvFilePath(source), []byte("FOO=bar\n"), 0o644))

		copied, err := CopyEnvFile(source, target)
		require.NoError(t, err)
		assert.True(t, copied)

		data, err := os.ReadFile(EnvFilePath(target))
		require.NoError(t, err)
		assert.Equal(t, "FOO=bar\n", string(data))
	})

	t.Run("no-op when source missing", func(t *testing.T) {
		source := t.TempDir()
		target := t.TempDir()

		copied, err := CopyEnvFile(source, target)
		require.NoError(t, err)
		assert.False(t, copied)
	})
}

func TestBranchFromWorktreePath(t *testing.T) {
	assert.Equal(t, "feature-auth", BranchFromWorktreePath("/srv/app/worktrees/feature-auth"))
}

func TestIsUnderWorktreeDir(t *testing.T) {
	t.Run("path under worktree dir", func(t *testing.T) {
		branch, ok := IsUnderWorktreeDir("/srv/app/worktrees/feature-auth/sub", "/srv/app", "worktrees")
		assert.True(t, ok)
		assert.Equal(t, "feature-auth", branch)
	})

	t.Run("path outside worktree dir", func(t *testing.T) {
		_, ok := IsUnderWorktreeDir("/srv/app", "/srv/app", "worktrees")
		assert.False(t, ok)
	})
}
