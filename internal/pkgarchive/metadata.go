package pkgarchive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/catalpainternational/dockertree/internal/model"
)

// packageVersion is this archive format's version, written into every
// package's metadata and not expected to change unless the layout does.
const packageVersion = "1.0"

// dockertreeVersion is recorded in package metadata for diagnostic purposes;
// it does not gate import compatibility.
const dockertreeVersion = "0.9.1"

// metadataFileName is the fixed name of a package's metadata file.
const metadataFileName = "metadata.json"

// GenerateMetadata computes a package_version/branch/checksums metadata
// document for every regular file under packageDir, and writes it to
// packageDir/metadata.json.
func GenerateMetadata(packageDir, branchName, projectName string, includeCode bool) (*model.PackageMetadata, error) {
	md := &model.PackageMetadata{
		PackageVersion:    packageVersion,
		DockertreeVersion: dockertreeVersion,
		CreatedAt:         time.Now(),
		BranchName:        branchName,
		ProjectName:       projectName,
		IncludeCode:       includeCode,
		Checksums:         map[string]string{},
	}

	err := filepath.Walk(packageDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		sum, err := ChecksumFile(path)
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(packageDir, path)
		if err != nil {
			return err
		}
		md.Checksums[rel] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("computing checksums: %w", err)
	}

	if err := WriteMetadata(filepath.Join(packageDir, metadataFileName), md); err != nil {
		return nil, err
	}

	return md, nil
}

// WriteMetadata serializes md as indented JSON to path.
func WriteMetadata(path string, md *model.PackageMetadata) error {
	data, err := json.MarshalIndent(md, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadMetadata parses the metadata.json file at path.
func ReadMetadata(path string) (*model.PackageMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var md model.PackageMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &md, nil
}

// VerifyChecksums checks that every file recorded in md.Checksums exists
// under packageDir and matches its recorded digest, returning false and a
// description of the first failure encountered.
func VerifyChecksums(packageDir string, md *model.PackageMetadata) (bool, string) {
	for rel, expected := range md.Checksums {
		path := filepath.Join(packageDir, rel)
		if _, err := os.Stat(path); err != nil {
			return false, fmt.Sprintf("file not found in package: %s", rel)
		}
		if !VerifyChecksum(path, expected) {
			return false, fmt.Sprintf("checksum mismatch for: %s", rel)
		}
	}
	return true, ""
}
