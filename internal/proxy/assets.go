package proxy

import (
	"embed"
	"os"
	"path/filepath"
)

//go:embed assets/docker-compose.yml assets/Caddyfile assets/monitor.py
var bundledAssets embed.FS

// WriteAssets extracts the bundled compose document, Caddyfile, and
// label-watcher script into dir (creating it if needed), returning their
// paths in the order NewManager expects (composeFile, caddyfile,
// monitorScript). Re-extracting is cheap and idempotent, so callers can
// call this on every startup rather than caching the result themselves.
func WriteAssets(dir string) (composeFile, caddyfile, monitorScript string, err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", "", "", err
	}

	composeFile = filepath.Join(dir, "docker-compose.yml")
	if err = extractAsset("assets/docker-compose.yml", composeFile); err != nil {
		return "", "", "", err
	}

	caddyfile = filepath.Join(dir, "Caddyfile")
	if err = extractAsset("assets/Caddyfile", caddyfile); err != nil {
		return "", "", "", err
	}

	monitorScript = filepath.Join(dir, "monitor.py")
	if err = extractAsset("assets/monitor.py", monitorScript); err != nil {
		return "", "", "", err
	}

	return composeFile, caddyfile, monitorScript, nil
}

func extractAsset(embeddedPath, destPath string) error {
	data, err := bundledAssets.ReadFile(embeddedPath)
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}
