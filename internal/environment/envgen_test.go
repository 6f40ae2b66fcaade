package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/compose"
	"github.com/catalpainternational/dockertree/internal/pathutil"
)

const overrideFixtureCompose = `
services:
  web:
    build:
      context: .
    ports:
      - "8000:8000"
  frontend:
    build:
      context: ./client
    volumes:
      - ./client:/app
  db:
    image: postgres:16

volumes:
  postgres_data:
`

// stageTransformedCompose writes a compose document at worktreePath's
// .dockertree/docker-compose.yml in the same shape Start leaves behind,
// so tests can exercise the override path's re-parse/rewrite step.
func stageTransformedCompose(t *testing.T, worktreePath string) {
	t.Helper()
	basePath := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(basePath, []byte(overrideFixtureCompose), 0o644))

	project, err := compose.Load(basePath)
	require.NoError(t, err)

	cfg := compose.Config{
		ComposeProjectName: "myapp-feature-x",
		ProjectRoot:        "/srv/myapp",
		WorktreeDir:        "worktrees",
		ProxyNetwork:       "dockertree_caddy_proxy",
	}
	transformed, _, err := compose.Transform(project, cfg)
	require.NoError(t, err)

	require.NoError(t, compose.Write(transformed, composeOverridePath(worktreePath)))
}

func TestSecureCookiePolicy(t *testing.T) {
	assert.True(t, SecureCookiePolicy("https://myapp-feature.example.com"))
	assert.False(t, SecureCookiePolicy("http://myapp-feature.localhost"))
	assert.False(t, SecureCookiePolicy("http://localhost"))
	assert.False(t, SecureCookiePolicy("http://127.0.0.1"))
	assert.False(t, SecureCookiePolicy("http://192.168.1.50:8080"))
}

func TestGenerator_CreateWorktreeEnv_Local(t *testing.T) {
	worktreesRoot := t.TempDir()
	worktreePath := filepath.Join(worktreesRoot, "feature-x")
	require.NoError(t, pathutil.WriteEnvFile(pathutil.EnvDockertreeFilePath(worktreePath), map[string]string{}))

	g := NewGenerator()
	vars, err := g.CreateWorktreeEnv("myapp", "feature-x", worktreePath, "", worktreesRoot, "", "")
	require.NoError(t, err)

	assert.Equal(t, "myapp-feature-x", vars["COMPOSE_PROJECT_NAME"])
	assert.Equal(t, "dev", vars["BUILD_MODE"])
	assert.Equal(t, "True", vars["DEBUG"])
	assert.Contains(t, vars["SITE_DOMAIN"], "myapp-feature-x.localhost")
	assert.Equal(t, "false", vars["USE_SECURE_COOKIES"])
}

func TestGenerator_CreateWorktreeEnv_Domain(t *testing.T) {
	worktreesRoot := t.TempDir()
	worktreePath := filepath.Join(worktreesRoot, "feature-x")

	g := NewGenerator()
	vars, err := g.CreateWorktreeEnv("myapp", "feature-x", worktreePath, "", worktreesRoot, "", "feature-x.example.com")
	require.NoError(t, err)

	assert.Equal(t, "prod", vars["BUILD_MODE"])
	assert.Equal(t, "False", vars["DEBUG"])
	assert.Equal(t, "https://feature-x.example.com", vars["CSRF_TRUSTED_ORIGINS"])
	assert.Equal(t, "true", vars["USE_SECURE_COOKIES"])
	assert.Equal(t, "admin@feature-x.example.com", vars["CADDY_EMAIL"])
}

func TestApplyDomainOverrides(t *testing.T) {
	worktreePath := t.TempDir()
	require.NoError(t, pathutil.WriteEnvFile(pathutil.EnvDockertreeFilePath(worktreePath), map[string]string{
		"SITE_DOMAIN": "old.localhost",
		"DEBUG":       "True",
	}))

	require.NoError(t, ApplyDomainOverrides(worktreePath, "new.example.com", false))

	vars, err := pathutil.LoadEnvFile(pathutil.EnvDockertreeFilePath(worktreePath))
	require.NoError(t, err)
	assert.Equal(t, "new.example.com", vars["SITE_DOMAIN"])
	assert.Equal(t, "false", vars["DEBUG"])
	assert.Equal(t, "prod", vars["BUILD_MODE"])
	assert.Contains(t, vars["ALLOWED_HOSTS"], "*.new.example.com")
}

func TestApplyIPOverrides(t *testing.T) {
	worktreePath := t.TempDir()
	require.NoError(t, pathutil.WriteEnvFile(pathutil.EnvDockertreeFilePath(worktreePath), map[string]string{}))

	require.NoError(t, ApplyIPOverrides(worktreePath, "203.0.113.5", false))

	vars, err := pathutil.LoadEnvFile(pathutil.EnvDockertreeFilePath(worktreePath))
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", vars["SITE_DOMAIN"])
	assert.Equal(t, "false", vars["USE_SECURE_COOKIES"])
	assert.NotContains(t, vars["ALLOWED_HOSTS"], "*.")
}

func TestIsFrontendService(t *testing.T) {
	assert.True(t, IsFrontendService("frontend", ""))
	assert.True(t, IsFrontendService("api", "./client"))
	assert.False(t, IsFrontendService("db", "./postgres"))
}

func TestApplyDomainOverrides_RewritesComposeProxyLabelsAndStripsFrontendMounts(t *testing.T) {
	worktreePath := t.TempDir()
	require.NoError(t, pathutil.WriteEnvFile(pathutil.EnvDockertreeFilePath(worktreePath), map[string]string{}))
	stageTransformedCompose(t, worktreePath)

	require.NoError(t, ApplyDomainOverrides(worktreePath, "new.example.com", false))

	project, err := compose.Load(composeOverridePath(worktreePath))
	require.NoError(t, err)

	for _, svc := range project.Services {
		switch svc.Name {
		case "web":
			assert.Equal(t, "new.example.com", svc.Labels["caddy.proxy"])
			_, attached := svc.Networks["dockertree_caddy_proxy"]
			assert.True(t, attached, "web service should be attached to the shared proxy network")
		case "frontend":
			assert.Empty(t, svc.Volumes, "frontend bind mount should be stripped in prod mode")
		}
	}
}

func TestApplyDomainOverrides_NoComposeDocumentIsANoop(t *testing.T) {
	worktreePath := t.TempDir()
	require.NoError(t, pathutil.WriteEnvFile(pathutil.EnvDockertreeFilePath(worktreePath), map[string]string{}))

	require.NoError(t, ApplyDomainOverrides(worktreePath, "new.example.com", false))

	_, err := os.Stat(composeOverridePath(worktreePath))
	assert.True(t, os.IsNotExist(err))
}
