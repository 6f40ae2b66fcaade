package pkgarchive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// checksumBlockSize matches the source system's read block size. The
// SHA-256 digest itself does not depend on it.
const checksumBlockSize = 4096

// ChecksumFile computes the SHA-256 hex digest of the file at path, reading
// it in fixed-size blocks rather than loading it whole into memory.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, checksumBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyChecksum reports whether the file at path's digest matches expected.
// Any read error is treated as a verification failure, not propagated.
func VerifyChecksum(path, expected string) bool {
	actual, err := ChecksumFile(path)
	if err != nil {
		return false
	}
	return actual == expected
}
