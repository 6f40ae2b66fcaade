package serverimport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/model"
)

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, dirExists(dir))
	assert.False(t, dirExists(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.False(t, dirExists(file), "a regular file is not a directory")
}

func TestCleanupExistingWorktree_NoOpWhenWorktreeMissing(t *testing.T) {
	root := t.TempDir()
	pc := &projectContext{
		project: &model.Project{Root: root, WorktreeDir: "worktrees"},
	}

	err := pc.cleanupExistingWorktree("feature-x")
	assert.NoError(t, err, "a branch with no existing worktree directory should be a no-op success")
}
