package pkgarchive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSamplePackageDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	pkgDir := filepath.Join(root, "feature-x_20260101-120000.dockertree-package")
	require.NoError(t, os.MkdirAll(filepath.Join(pkgDir, "environment"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "environment", ".env"), []byte("FOO=bar\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(pkgDir, "volumes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "volumes", "backup_feature-x.tar"), []byte("tarbytes"), 0o644))
	return pkgDir
}

func TestCompressAndExtractPackage_RoundTrip(t *testing.T) {
	pkgDir := buildSamplePackageDir(t)
	outputDir := t.TempDir()
	archivePath := filepath.Join(outputDir, "feature-x.dockertree-package.tar.gz")

	require.NoError(t, CompressPackage(pkgDir, archivePath))

	destDir := t.TempDir()
	require.NoError(t, ExtractPackage(archivePath, destDir))

	found, err := FindPackageDir(destDir)
	require.NoError(t, err)

	envFile := filepath.Join(found, "environment", ".env")
	data, err := os.ReadFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "FOO=bar\n", string(data))

	backupFile := filepath.Join(found, "volumes", "backup_feature-x.tar")
	data, err = os.ReadFile(backupFile)
	require.NoError(t, err)
	assert.Equal(t, "tarbytes", string(data))
}

func TestExtractPackage_FromDirectory(t *testing.T) {
	pkgDir := buildSamplePackageDir(t)
	destDir := t.TempDir()

	require.NoError(t, ExtractPackage(pkgDir, destDir))

	found, err := FindPackageDir(destDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(found, "environment", ".env"))
}

func TestFindPackageDir_NoneFound(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-package"), 0o755))

	_, err := FindPackageDir(root)
	assert.Error(t, err)
}

func TestExtractTarGz_RejectsPathTraversal(t *testing.T) {
	// withinDir is the guard extractTarGz relies on; exercise it directly
	// since constructing a malicious tar stream adds no further coverage.
	destDir := t.TempDir()
	assert.True(t, withinDir(destDir, filepath.Join(destDir, "ok.txt")))
	assert.False(t, withinDir(destDir, filepath.Join(destDir, "..", "escape.txt")))
}

func TestCopyTree(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "a.txt"), []byte("a"), 0o644))

	dst := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, copyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "nested", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}
