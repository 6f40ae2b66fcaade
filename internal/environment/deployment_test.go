package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/pathutil"
)

func TestLoadDeployment_PrefersPushOverDroplet(t *testing.T) {
	worktree := t.TempDir()
	path := pathutil.EnvDockertreeFilePath(worktree)
	require.NoError(t, pathutil.WriteEnvFile(path, map[string]string{
		"PUSH_SCP_TARGET":    "deploy@push.example.com:/srv/app",
		"DROPLET_SCP_TARGET": "deploy@droplet.example.com:/srv/app",
		"DROPLET_DOMAIN":     "droplet.example.com",
	}))

	d, err := LoadDeployment(worktree)
	require.NoError(t, err)
	assert.Equal(t, "deploy@push.example.com:/srv/app", d.SCPTarget)
	assert.Equal(t, "droplet.example.com", d.Domain)
}

func TestLoadDeployment_MissingFile(t *testing.T) {
	d, err := LoadDeployment(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Deployment{}, d)
}

func TestSaveDeployment_PreservesExistingVars(t *testing.T) {
	worktree := t.TempDir()
	path := pathutil.EnvDockertreeFilePath(worktree)
	require.NoError(t, pathutil.WriteEnvFile(path, map[string]string{"COMPOSE_PROJECT_NAME": "demo-feature"}))

	require.NoError(t, SaveDeployment(worktree, Deployment{SCPTarget: "deploy@host:/srv/app", Domain: "feature.example.com"}))

	vars, err := pathutil.LoadEnvFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo-feature", vars["COMPOSE_PROJECT_NAME"])
	assert.Equal(t, "deploy@host:/srv/app", vars["PUSH_SCP_TARGET"])
	assert.Equal(t, "feature.example.com", vars["PUSH_DOMAIN"])
	assert.NotContains(t, vars, "PUSH_IP")
}

func TestSaveDeployment_RoundTrip(t *testing.T) {
	worktree := t.TempDir()
	want := Deployment{SCPTarget: "deploy@host:/srv/app", IP: "203.0.113.5"}
	require.NoError(t, SaveDeployment(worktree, want))

	got, err := LoadDeployment(worktree)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
