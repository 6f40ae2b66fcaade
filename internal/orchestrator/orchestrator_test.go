package orchestrator

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/gitwt"
	"github.com/catalpainternational/dockertree/internal/model"
)

func setupTestRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	runTestGit(t, dir, "init")
	runTestGit(t, dir, "config", "user.email", "test@example.com")
	runTestGit(t, dir, "config", "user.name", "Test User")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# repo\n"), 0o644))
	runTestGit(t, dir, "add", ".")
	runTestGit(t, dir, "commit", "-m", "initial commit")

	return dir
}

func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, string(output))
	return string(output)
}

func testOrchestrator(projectRoot string) *WorktreeOrchestrator {
	return New(&model.Project{
		Name:        "testproj",
		Root:        projectRoot,
		WorktreeDir: "worktrees",
	}, nil, nil)
}

func TestWorktreePath(t *testing.T) {
	o := testOrchestrator("/srv/myproj")
	assert.Equal(t, "/srv/myproj/worktrees/feature-x", o.worktreePath("feature-x"))
}

func TestComposeOutputPath(t *testing.T) {
	assert.Equal(t, "/wt/.dockertree/docker-compose.yml", composeOutputPath("/wt"))
}

func TestPerWorktreeVolumesAndSourceVolumes(t *testing.T) {
	o := testOrchestrator("/srv/myproj")

	perWT := o.perWorktreeVolumes("feature-x")
	src := o.sourceVolumes()

	for _, vt := range model.KnownVolumeTypes {
		key := string(vt)
		assert.Contains(t, perWT[key], "feature-x")
		assert.NotContains(t, src[key], "feature-x")
	}
}

func TestDomainAndComposeProjectName(t *testing.T) {
	o := testOrchestrator("/srv/myproj")
	assert.Contains(t, o.domain("feature-x"), "feature-x")
	assert.Contains(t, o.composeProjectName("feature-x"), "feature-x")
}

func TestList(t *testing.T) {
	repoPath := setupTestRepo(t)
	o := testOrchestrator(repoPath)
	o.git = gitwt.NewManager()

	worktreePath := filepath.Join(t.TempDir(), "feature-x")
	require.NoError(t, o.git.Add(repoPath, "feature-x", worktreePath, ""))

	result := o.List()
	require.True(t, result.Success)

	entries, ok := result.Data.([]worktreeListEntry)
	require.True(t, ok)

	var found bool
	for _, e := range entries {
		if e.Branch == "feature-x" {
			found = true
			assert.Equal(t, worktreePath, e.Path)
			assert.Equal(t, "active", e.Status)
		}
	}
	assert.True(t, found)
}
