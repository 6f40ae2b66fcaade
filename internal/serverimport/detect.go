package serverimport

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/catalpainternational/dockertree/internal/config"
)

// findExistingProject searches the well-known locations for a
// .dockertree/config.yml file, walking up to maxProjectSearchDepth levels
// below each root. It returns the project root (the directory containing
// .dockertree/) and whether one was found.
func findExistingProject() (string, bool) {
	for _, root := range searchRoots {
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			continue
		}
		if found, ok := searchBelow(root, maxProjectSearchDepth); ok {
			return found, true
		}
	}
	return "", false
}

// searchBelow walks dir looking for a .dockertree/config.yml file no more
// than maxDepth directory levels down.
func searchBelow(dir string, maxDepth int) (string, bool) {
	configPath := filepath.Join(dir, config.ConfigRelPath)
	if _, err := os.Stat(configPath); err == nil {
		return dir, true
	}
	if maxDepth <= 0 {
		return "", false
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if found, ok := searchBelow(filepath.Join(dir, e.Name()), maxDepth-1); ok {
			return found, true
		}
	}
	return "", false
}
