package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/model"
)

func TestGroupContainersByBranch(t *testing.T) {
	containers := []model.ContainerInfo{
		{ContainerName: "acme-feature-auth-web", Labels: map[string]string{LabelBranch: "feature-auth"}},
		{ContainerName: "acme-feature-auth-db", Labels: map[string]string{LabelBranch: "feature-auth"}},
		{ContainerName: "acme-main-web", Labels: map[string]string{LabelBranch: "main"}},
		{ContainerName: "unrelated", Labels: map[string]string{}},
	}

	groups := GroupContainersByBranch(containers)
	assert.Len(t, groups["feature-auth"], 2)
	assert.Len(t, groups["main"], 1)
	assert.NotContains(t, groups, "")
}

func TestBuildBranchEnvironment(t *testing.T) {
	worktree := t.TempDir()

	labels := map[string]string{
		LabelManagedBy:    ManagedByValue,
		LabelBranch:       "feature-auth",
		LabelWorktreePath: worktree,
		LabelProjectName:  "acme",
		LabelCreatedAt:    "2026-07-01T12:00:00Z",
	}
	containers := []model.ContainerInfo{
		{ContainerName: "acme-feature-auth-web", Status: "running", Labels: labels},
	}

	env, projectName, err := BuildBranchEnvironment(containers)
	require.NoError(t, err)
	assert.Equal(t, "acme", projectName)
	assert.Equal(t, model.StatusRunning, env.Status)
}

func TestBuildBranchEnvironment_Orphaned(t *testing.T) {
	missingPath := filepath.Join(t.TempDir(), "does-not-exist")
	labels := map[string]string{
		LabelManagedBy:    ManagedByValue,
		LabelBranch:       "feature-auth",
		LabelWorktreePath: missingPath,
		LabelProjectName:  "acme",
		LabelCreatedAt:    "2026-07-01T12:00:00Z",
	}
	containers := []model.ContainerInfo{
		{ContainerName: "acme-feature-auth-web", Status: "exited", Labels: labels},
	}

	env, _, err := BuildBranchEnvironment(containers)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOrphaned, env.Status)
}

func TestBuildBranchEnvironment_Empty(t *testing.T) {
	_, _, err := BuildBranchEnvironment(nil)
	assert.Error(t, err)
}

func TestDetermineStatus_Stopped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	status := determineStatus([]model.ContainerInfo{{Status: "exited"}}, dir)
	assert.Equal(t, model.StatusStopped, status)
}
