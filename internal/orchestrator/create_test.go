package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/gitwt"
)

func TestCopyDockertreeDir_ExcludesWorktreesAndAddsReadme(t *testing.T) {
	projectRoot := t.TempDir()
	src := filepath.Join(projectRoot, dockertreeDirName)
	require.NoError(t, os.MkdirAll(filepath.Join(src, worktreesSubdir, "feature-a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, worktreesSubdir, "feature-a", "env.dockertree"), []byte("X=1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "config.yml"), []byte("project_name: demo\n"), 0o644))

	worktreePath := t.TempDir()
	require.NoError(t, copyDockertreeDir(projectRoot, worktreePath))

	dst := filepath.Join(worktreePath, dockertreeDirName)

	_, err := os.Stat(filepath.Join(dst, "config.yml"))
	assert.NoError(t, err)

	_, err = os.Stat(filepath.Join(dst, worktreesSubdir))
	assert.True(t, os.IsNotExist(err), "worktrees/ subdirectory must not be copied")

	_, err = os.Stat(filepath.Join(dst, "README.md"))
	assert.NoError(t, err, "README.md must be present in the copy")
}

func TestCopyDockertreeDir_PreservesExistingReadme(t *testing.T) {
	projectRoot := t.TempDir()
	src := filepath.Join(projectRoot, dockertreeDirName)
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.md"), []byte("custom readme\n"), 0o644))

	worktreePath := t.TempDir()
	require.NoError(t, copyDockertreeDir(projectRoot, worktreePath))

	content, err := os.ReadFile(filepath.Join(worktreePath, dockertreeDirName, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "custom readme\n", string(content))
}

func TestCopyDockertreeDir_MissingSourceCreatesEmptyDir(t *testing.T) {
	projectRoot := t.TempDir()
	worktreePath := t.TempDir()

	require.NoError(t, copyDockertreeDir(projectRoot, worktreePath))

	info, err := os.Stat(filepath.Join(worktreePath, dockertreeDirName))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, dirExists(dir))
	assert.False(t, dirExists(filepath.Join(dir, "nope")))

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.False(t, dirExists(file))
}

func TestBranchIsCheckedOutElsewhere(t *testing.T) {
	repoPath := setupTestRepo(t)
	o := testOrchestrator(repoPath)
	o.git = gitwt.NewManager()

	worktreePath := filepath.Join(t.TempDir(), "feature-a")
	require.NoError(t, o.git.Add(repoPath, "feature-a", worktreePath, ""))

	assert.False(t, o.branchIsCheckedOutElsewhere("feature-a"), "directory still present")

	require.NoError(t, os.RemoveAll(worktreePath))
	assert.True(t, o.branchIsCheckedOutElsewhere("feature-a"), "directory removed out from under git")
}
