package proxy

import (
	"fmt"
	"os"
	"strings"
)

// placeholder tokens the bundled compose template expects to be substituted
// with this installation's actual template paths before being handed to
// compose, since the template ships with generic placeholders rather than
// install-specific absolute paths.
const (
	caddyfilePlaceholder = "{CADDYFILE_PATH}"
	monitorPlaceholder   = "{MONITOR_SCRIPT_PATH}"
)

// renderTempCompose reads the bundled compose template, substitutes the
// Caddyfile and monitor script paths for this installation, and writes the
// result to a temporary file for `compose up`/`compose down` to target. The
// caller is responsible for removing the returned path.
func (m *Manager) renderTempCompose() (string, error) {
	content, err := os.ReadFile(m.composeFile)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", m.composeFile, err)
	}

	rendered := strings.ReplaceAll(string(content), caddyfilePlaceholder, m.caddyfile)
	rendered = strings.ReplaceAll(rendered, monitorPlaceholder, m.monitorScript)

	f, err := os.CreateTemp("", "dockertree-proxy-*.yml")
	if err != nil {
		return "", fmt.Errorf("creating temp compose file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(rendered); err != nil {
		return "", fmt.Errorf("writing temp compose file: %w", err)
	}

	return f.Name(), nil
}
