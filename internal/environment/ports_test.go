package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/pathutil"
)

func TestAllocator_Allocate_PicksFreePortInRange(t *testing.T) {
	worktreesRoot := t.TempDir()
	a := NewAllocator()

	port, err := a.Allocate(PoolDB, "feature-x", worktreesRoot, "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 55432)
	assert.LessOrEqual(t, port, 56431)
}

func TestAllocator_Allocate_ReusesExistingAssignmentForSameBranch(t *testing.T) {
	worktreesRoot := t.TempDir()
	branchDir := filepath.Join(worktreesRoot, "feature-x")
	require.NoError(t, os.MkdirAll(filepath.Join(branchDir, ".dockertree"), 0o755))
	require.NoError(t, pathutil.WriteEnvFile(
		pathutil.EnvDockertreeFilePath(branchDir),
		map[string]string{"DB_HOST_PORT": "55555"},
	))

	a := NewAllocator()
	port, err := a.Allocate(PoolDB, "feature-x", worktreesRoot, "")
	require.NoError(t, err)
	assert.Equal(t, 55555, port)
}

func TestAllocator_Allocate_SkipsPortsUsedByOtherBranches(t *testing.T) {
	worktreesRoot := t.TempDir()
	other := filepath.Join(worktreesRoot, "other-branch")
	require.NoError(t, os.MkdirAll(filepath.Join(other, ".dockertree"), 0o755))
	require.NoError(t, pathutil.WriteEnvFile(
		pathutil.EnvDockertreeFilePath(other),
		map[string]string{"DB_HOST_PORT": "55432"},
	))

	a := NewAllocator()
	port, err := a.Allocate(PoolDB, "feature-x", worktreesRoot, "")
	require.NoError(t, err)
	assert.NotEqual(t, 55432, port)
}

func TestAllocator_Allocate_UnknownPool(t *testing.T) {
	a := NewAllocator()
	_, err := a.Allocate(PortPool("bogus"), "feature-x", t.TempDir(), "")
	assert.Error(t, err)
}
