package pkgarchive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/catalpainternational/dockertree/internal/model"
)

// Validate extracts packagePath to a scratch directory, reads its metadata,
// and verifies every recorded checksum, without touching any worktree,
// volume, or project state.
func (m *Manager) Validate(packagePath string) model.Result {
	valid, md, checksumOK, err := validatePackageFile(packagePath)
	if err != nil {
		return model.Err("invalid_package", err.Error())
	}

	return model.Ok(map[string]interface{}{
		"valid":          valid,
		"metadata":       md,
		"checksum_valid": checksumOK,
	})
}

func validatePackageFile(packagePath string) (valid bool, md *model.PackageMetadata, checksumOK bool, err error) {
	tempDir, err := os.MkdirTemp("", "dockertree-validate-*")
	if err != nil {
		return false, nil, false, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	if err := ExtractPackage(packagePath, tempDir); err != nil {
		return false, nil, false, fmt.Errorf("extracting package: %w", err)
	}

	packageDir, err := FindPackageDir(tempDir)
	if err != nil {
		return false, nil, false, err
	}

	md, err = ReadMetadata(filepath.Join(packageDir, metadataFileName))
	if err != nil {
		return false, nil, false, fmt.Errorf("reading metadata: %w", err)
	}

	ok, _ := VerifyChecksums(packageDir, md)
	return ok, md, ok, nil
}

// packageEntry describes one package file found by List.
type packageEntry struct {
	Path          string                 `json:"path"`
	SizeBytes     int64                  `json:"size_bytes"`
	Valid         bool                   `json:"valid"`
	ChecksumValid bool                   `json:"checksum_valid"`
	Metadata      *model.PackageMetadata `json:"metadata,omitempty"`
}

// List enumerates package files (staged .dockertree-package directories and
// .tar.gz archives) directly under dir, validating each and returning them
// sorted by path.
func (m *Manager) List(dir string) model.Result {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return model.Err("general_error", fmt.Sprintf("reading %s: %s", dir, err))
	}

	var packages []packageEntry
	for _, e := range entries {
		name := e.Name()
		isPackageDir := e.IsDir() && strings.HasSuffix(name, packageSuffix)
		isArchive := !e.IsDir() && strings.HasSuffix(name, packageSuffix+".tar.gz")
		if !isPackageDir && !isArchive {
			continue
		}

		path := filepath.Join(dir, name)
		size, _ := sizeOf(path)

		valid, md, checksumOK, validateErr := validatePackageFile(path)
		entry := packageEntry{Path: path, SizeBytes: size, Valid: valid, ChecksumValid: checksumOK}
		if validateErr == nil {
			entry.Metadata = md
		}
		packages = append(packages, entry)
	}

	sort.Slice(packages, func(i, j int) bool { return packages[i].Path < packages[j].Path })

	return model.Ok(packages)
}

// sizeOf returns the total size in bytes of the file or directory at path.
func sizeOf(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	err = filepath.Walk(path, func(_ string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			total += fi.Size()
		}
		return nil
	})
	return total, err
}
