package pkgarchive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/config"
)

func TestInsideProject_FindsConfigInAncestor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".dockertree"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, config.ConfigRelPath), []byte("project_name: demo\n"), 0o644))

	nested := filepath.Join(root, "worktrees", "some-branch")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	assert.True(t, insideProject(nested))
}

func TestInsideProject_NoConfigAnywhere(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, insideProject(dir))
}

func TestScaffoldStandaloneProject(t *testing.T) {
	targetDir := filepath.Join(t.TempDir(), "fresh-project")

	project, err := scaffoldStandaloneProject(targetDir)
	require.NoError(t, err)
	assert.Equal(t, targetDir, project.Root)
	assert.FileExists(t, filepath.Join(targetDir, config.ConfigRelPath))
}

func TestRestoreEnvironmentFiles(t *testing.T) {
	packageDir := t.TempDir()
	envDir := filepath.Join(packageDir, "environment")
	require.NoError(t, os.MkdirAll(filepath.Join(envDir, dockertreeDirName), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte("FOO=bar\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, dockertreeDirName, "README.md"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(envDir, "docker-compose.yml"), []byte("services: {}\n"), 0o644))

	worktreePath := t.TempDir()
	require.NoError(t, restoreEnvironmentFiles(packageDir, worktreePath))

	assert.FileExists(t, filepath.Join(worktreePath, ".env"))
	assert.FileExists(t, filepath.Join(worktreePath, dockertreeDirName, "README.md"))
	assert.FileExists(t, filepath.Join(worktreePath, dockertreeDirName, "docker-compose.yml"))
}

func TestRewriteFileVar(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PROJECT_ROOT=/old/path\nOTHER=keep\n"), 0o644))

	require.NoError(t, rewriteFileVar(envFile, "PROJECT_ROOT", "/new/path"))

	data, err := os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PROJECT_ROOT=/new/path")
	assert.Contains(t, string(data), "OTHER=keep")
}

func TestRewritePlaceholder(t *testing.T) {
	dir := t.TempDir()
	composeFile := filepath.Join(dir, "docker-compose.yml")
	require.NoError(t, os.WriteFile(composeFile, []byte("build: ${PROJECT_ROOT}/app\nvolumes:\n  - ${PROJECT_ROOT}/code:/code\n"), 0o644))

	require.NoError(t, rewritePlaceholder(composeFile, "${PROJECT_ROOT}", "/srv/app"))

	data, err := os.ReadFile(composeFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "${PROJECT_ROOT}")
	assert.Contains(t, string(data), "/srv/app/app")
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, dirExists(dir))
	assert.False(t, dirExists(filepath.Join(dir, "missing")))
}
