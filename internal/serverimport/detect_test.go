package serverimport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/config"
)

func TestSearchBelow_FindsConfigAtRoot(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, config.ConfigRelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte("project_name: demo\n"), 0o644))

	found, ok := searchBelow(root, maxProjectSearchDepth)
	assert.True(t, ok)
	assert.Equal(t, root, found)
}

func TestSearchBelow_FindsConfigInNestedDirectory(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "projects", "demo")
	configPath := filepath.Join(nested, config.ConfigRelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte("project_name: demo\n"), 0o644))

	found, ok := searchBelow(root, maxProjectSearchDepth)
	assert.True(t, ok)
	assert.Equal(t, nested, found)
}

func TestSearchBelow_RespectsMaxDepth(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b", "c", "d")
	configPath := filepath.Join(deep, config.ConfigRelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte("project_name: demo\n"), 0o644))

	_, ok := searchBelow(root, 1)
	assert.False(t, ok)
}

func TestSearchBelow_SkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	hidden := filepath.Join(root, ".git", "nested")
	configPath := filepath.Join(hidden, config.ConfigRelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0o755))
	require.NoError(t, os.WriteFile(configPath, []byte("project_name: demo\n"), 0o644))

	_, ok := searchBelow(root, maxProjectSearchDepth)
	assert.False(t, ok)
}

func TestSearchBelow_NoConfigAnywhere(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	_, ok := searchBelow(root, maxProjectSearchDepth)
	assert.False(t, ok)
}
