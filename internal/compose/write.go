package compose

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// Write serializes project to path using stable key ordering (map keys
// sorted alphabetically by yaml.v3's default map marshaling) and without a
// stray top-level "version" field, which compose-go's loader drops from the
// tree but which a naive marshal of a generic map could otherwise reintroduce.
func Write(project *types.Project, path string) error {
	data, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("marshaling compose document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
