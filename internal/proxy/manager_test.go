package proxy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const templateFixture = `
services:
  caddy:
    image: caddy:2
    volumes:
      - dockertree_caddy_data:/data
      - {CADDYFILE_PATH}:/etc/caddy/Caddyfile:ro
  caddy_monitor:
    image: python:3.12-slim
    volumes:
      - {MONITOR_SCRIPT_PATH}:/monitor.py:ro
`

func TestRenderTempCompose(t *testing.T) {
	dir := t.TempDir()
	composeFile := filepath.Join(dir, "docker-compose.global-caddy.yml")
	require.NoError(t, os.WriteFile(composeFile, []byte(templateFixture), 0o644))

	m := &Manager{
		composeFile:   composeFile,
		caddyfile:     "/opt/dockertree/config/Caddyfile.dockertree",
		monitorScript: "/opt/dockertree/scripts/caddy-docker-monitor.py",
	}

	path, err := m.renderTempCompose()
	require.NoError(t, err)
	defer os.Remove(path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(content), "/opt/dockertree/config/Caddyfile.dockertree:/etc/caddy/Caddyfile:ro")
	assert.Contains(t, string(content), "/opt/dockertree/scripts/caddy-docker-monitor.py:/monitor.py:ro")
	assert.NotContains(t, string(content), caddyfilePlaceholder)
	assert.NotContains(t, string(content), monitorPlaceholder)
}

func TestRenderTempCompose_MissingTemplate(t *testing.T) {
	m := &Manager{composeFile: filepath.Join(t.TempDir(), "missing.yml")}
	_, err := m.renderTempCompose()
	assert.Error(t, err)
}

func TestNewManager(t *testing.T) {
	m := NewManager(nil, "dockertree_caddy_proxy", "/a/compose.yml", "/a/Caddyfile", "/a/monitor.py")
	require.NotNil(t, m)
	assert.Equal(t, "dockertree_caddy_proxy", m.network)
	assert.Equal(t, "/a/compose.yml", m.composeFile)
	assert.Equal(t, "/a/Caddyfile", m.caddyfile)
	assert.Equal(t, "/a/monitor.py", m.monitorScript)
}

func TestConstants(t *testing.T) {
	assert.Equal(t, "dockertree_caddy_proxy", ContainerName)
	assert.Equal(t, "caddy_monitor", WatcherContainerName)
	assert.Equal(t, "dockertree-proxy", ProjectName)
	assert.ElementsMatch(t, []string{"dockertree_caddy_data", "dockertree_caddy_config"}, proxyVolumes)
}
