package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# a comment\n\nFOO=bar\nBAZ = qux \nMALFORMED\nURL=https://example.com?a=1&b=2\n=novalue\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	vars, err := LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bar", vars["FOO"])
	assert.Equal(t, "qux", vars["BAZ"])
	assert.Equal(t, "https://example.com?a=1&b=2", vars["URL"])
	assert.NotContains(t, vars, "MALFORMED")
	assert.Len(t, vars, 3)
}

func TestLoadEnvFile_Missing(t *testing.T) {
	vars, err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Empty(t, vars)
}

func TestWriteEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	err := WriteEnvFile(path, map[string]string{"ZETA": "1", "ALPHA": "2"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ALPHA=2\nZETA=1\n", string(data))
}

func TestMergeEnv(t *testing.T) {
	base := map[string]string{"A": "1", "B": "2"}
	override := map[string]string{"B": "override", "C": "3"}

	merged := MergeEnv(base, override)
	assert.Equal(t, map[string]string{"A": "1", "B": "override", "C": "3"}, merged)

	// Inputs not mutated.
	assert.Equal(t, "2", base["B"])
}
