package pkgarchive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/model"
)

func TestGenerateMetadata_ChecksumsExcludeMetadataFile(t *testing.T) {
	packageDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(packageDir, "environment"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(packageDir, "environment", ".env"), []byte("FOO=bar\n"), 0o644))

	md, err := GenerateMetadata(packageDir, "feature-x", "myproject", false)
	require.NoError(t, err)

	assert.Equal(t, packageVersion, md.PackageVersion)
	assert.Equal(t, "feature-x", md.BranchName)
	assert.Equal(t, "myproject", md.ProjectName)
	assert.False(t, md.IncludeCode)
	assert.Contains(t, md.Checksums, filepath.Join("environment", ".env"))
	assert.NotContains(t, md.Checksums, metadataFileName)
}

func TestWriteAndReadMetadata_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, metadataFileName)

	original := &model.PackageMetadata{
		PackageVersion:    packageVersion,
		DockertreeVersion: dockertreeVersion,
		BranchName:        "feature-y",
		ProjectName:       "projectY",
		Checksums:         map[string]string{"environment/.env": "abc123"},
	}
	require.NoError(t, WriteMetadata(path, original))

	read, err := ReadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, original.BranchName, read.BranchName)
	assert.Equal(t, original.Checksums, read.Checksums)
}

func TestVerifyChecksums_DetectsTamperedFile(t *testing.T) {
	packageDir := t.TempDir()
	filePath := filepath.Join(packageDir, "payload.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("original"), 0o644))

	md, err := GenerateMetadata(packageDir, "feature-z", "projectZ", false)
	require.NoError(t, err)

	ok, reason := VerifyChecksums(packageDir, md)
	assert.True(t, ok)
	assert.Empty(t, reason)

	require.NoError(t, os.WriteFile(filePath, []byte("tampered"), 0o644))
	ok, reason = VerifyChecksums(packageDir, md)
	assert.False(t, ok)
	assert.NotEmpty(t, reason)
}

func TestVerifyChecksums_DetectsMissingFile(t *testing.T) {
	packageDir := t.TempDir()
	filePath := filepath.Join(packageDir, "payload.txt")
	require.NoError(t, os.WriteFile(filePath, []byte("original"), 0o644))

	md, err := GenerateMetadata(packageDir, "feature-z", "projectZ", false)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filePath))
	ok, reason := VerifyChecksums(packageDir, md)
	assert.False(t, ok)
	assert.Contains(t, reason, "payload.txt")
}
