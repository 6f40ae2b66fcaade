package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureCompose = `
services:
  web:
    build:
      context: .
    ports:
      - "8000:8000"
    volumes:
      - ./src:/app/src
      - ./config:/app/config
  db:
    image: postgres:16
  caddy:
    image: caddy:2

volumes:
  postgres_data:
  caddy_data:

networks:
  default:
`

func loadFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCompose), 0o644))
	return path
}

func testConfig() Config {
	return Config{
		ComposeProjectName: "myapp-feature-x",
		ProjectRoot:        "/srv/myapp",
		WorktreeDir:        "worktrees",
		ProxyNetwork:       "dockertree_caddy_proxy",
	}
}

func TestTransform_FiltersCaddyService(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	transformed, _, err := Transform(project, testConfig())
	require.NoError(t, err)

	for _, svc := range transformed.Services {
		assert.NotEqual(t, "caddy", svc.Name)
	}
}

func TestTransform_ContainerNames(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	transformed, _, err := Transform(project, testConfig())
	require.NoError(t, err)

	for _, svc := range transformed.Services {
		if svc.Name == "web" {
			assert.Equal(t, "${COMPOSE_PROJECT_NAME}-web", svc.ContainerName)
		}
		if svc.Name == "db" {
			assert.Equal(t, "${COMPOSE_PROJECT_NAME}-db", svc.ContainerName)
		}
	}
}

func TestTransform_PortsBecomeExpose(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	transformed, _, err := Transform(project, testConfig())
	require.NoError(t, err)

	for _, svc := range transformed.Services {
		if svc.Name == "web" {
			assert.Empty(t, svc.Ports)
			assert.Contains(t, svc.Expose, "8000")
		}
	}
}

func TestTransform_WebLabelsAndNetwork(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	transformed, _, err := Transform(project, testConfig())
	require.NoError(t, err)

	for _, svc := range transformed.Services {
		if svc.Name == "web" {
			assert.Equal(t, "${COMPOSE_PROJECT_NAME}.localhost", svc.Labels["caddy.proxy"])
			assert.Equal(t, "${COMPOSE_PROJECT_NAME}-web:8000", svc.Labels["caddy.proxy.reverse_proxy"])
			_, ok := svc.Networks["dockertree_caddy_proxy"]
			assert.True(t, ok)
		}
		if svc.Name == "db" {
			assert.NotContains(t, svc.Labels, "caddy.proxy")
		}
	}
}

func TestTransform_EnvFilesAndEnvironment(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	transformed, _, err := Transform(project, testConfig())
	require.NoError(t, err)

	for _, svc := range transformed.Services {
		assert.Contains(t, svc.EnvFile, "${PROJECT_ROOT}/.env")
		assert.Contains(t, svc.EnvFile, "${PROJECT_ROOT}/.dockertree/env.dockertree")
		require.Contains(t, svc.Environment, "COMPOSE_PROJECT_NAME")
		assert.Equal(t, "myapp-feature-x", *svc.Environment["COMPOSE_PROJECT_NAME"])
	}
}

func TestTransform_VolumeAndBuildRewrites(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	transformed, _, err := Transform(project, testConfig())
	require.NoError(t, err)

	for _, svc := range transformed.Services {
		if svc.Name == "web" {
			assert.Equal(t, "${PROJECT_ROOT}", svc.Build.Context)
			for _, v := range svc.Volumes {
				if v.Target == "/app/src" {
					assert.Contains(t, v.Source, "${PROJECT_ROOT}/worktrees/${COMPOSE_PROJECT_NAME}/src")
				}
				if v.Target == "/app/config" {
					assert.Equal(t, "${PROJECT_ROOT}/config", v.Source)
				}
			}
		}
	}
}

func TestTransform_TopLevelVolumes(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	transformed, _, err := Transform(project, testConfig())
	require.NoError(t, err)

	_, hasCaddyData := transformed.Volumes["caddy_data"]
	assert.False(t, hasCaddyData)

	pgVol, ok := transformed.Volumes["postgres_data"]
	require.True(t, ok)
	assert.Equal(t, "myapp-feature-x_postgres_data", pgVol.Name)
}

func TestTransform_Networks(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	transformed, _, err := Transform(project, testConfig())
	require.NoError(t, err)

	net, ok := transformed.Networks["dockertree_caddy_proxy"]
	require.True(t, ok)
	assert.True(t, net.External.External)
}

func TestRewritePath(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, "${PROJECT_ROOT}", rewritePath(".", cfg))
	assert.Equal(t, "${PROJECT_ROOT}/worktrees/${COMPOSE_PROJECT_NAME}/src", rewritePath("./src", cfg))
	assert.Equal(t, "${PROJECT_ROOT}/config/nginx.conf", rewritePath("./config/nginx.conf", cfg))
	assert.Equal(t, "/already/absolute", rewritePath("/already/absolute", cfg))
}

func TestCleanLegacy(t *testing.T) {
	project, err := Load(loadFixture(t))
	require.NoError(t, err)

	cfg := testConfig()
	transformed, _, err := Transform(project, cfg)
	require.NoError(t, err)

	cleaned := CleanLegacy(transformed, cfg)
	for _, svc := range cleaned.Services {
		assert.False(t, len(svc.ContainerName) > 0 && svc.ContainerName[0] == '$')
		assert.NotContains(t, svc.Labels, "caddy.proxy")
	}
	_, ok := cleaned.Networks["dockertree_caddy_proxy"]
	assert.False(t, ok)
}
