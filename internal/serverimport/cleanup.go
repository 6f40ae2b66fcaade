package serverimport

import (
	"os"

	"github.com/catalpainternational/dockertree/internal/pathutil"
)

// cleanupExistingWorktree removes any prior worktree for branch before an
// import overwrites it: first via the normal remove path (stops containers,
// removes volumes, removes the worktree), falling back to a prune of stale
// git worktree references if that path leaves anything behind. A branch
// with no existing worktree is a no-op success.
func (pc *projectContext) cleanupExistingWorktree(branch string) error {
	worktreePath := pathutil.WorktreePath(pc.project.Root, pc.project.WorktreeDir, branch)
	if !dirExists(worktreePath) {
		return nil
	}

	result := pc.orch.Remove(branch, true, false)
	if result.Success {
		return nil
	}

	// Manual fallback: the worktree directory may already be gone or
	// corrupted in a way Remove refuses to touch; prune stale git
	// references so the subsequent Create isn't blocked by them.
	return pc.git.PruneWorktrees(pc.project.Root)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
