package orchestrator

import (
	"fmt"

	"github.com/catalpainternational/dockertree/internal/model"
)

// Remove tears down a branch environment: stops its containers (removing
// images), removes its per-worktree volumes, removes the worktree directory,
// and — unless deleteBranch is false — deletes the Git branch itself. The
// worktree is always removed with force; force is threaded through to the
// branch deletion only.
func (o *WorktreeOrchestrator) Remove(branch string, force, deleteBranch bool) model.Result {
	worktreePath := o.worktreePath(branch)

	hasWorktree := dirExists(worktreePath) && o.git.IsWorktree(worktreePath)
	hasBranch := o.git.BranchExists(o.project.Root, branch)
	hasVolumes := o.anyPerWorktreeVolumeExists(branch)

	if !hasWorktree && !hasBranch && !hasVolumes {
		return model.Err("not_found", fmt.Sprintf("no worktree, branch, or volumes found for %q", branch))
	}

	if !hasWorktree && hasBranch && !hasVolumes {
		if !deleteBranch {
			return model.Ok(map[string]string{"branch": branch, "status": "branch_kept"})
		}
		if err := o.git.DeleteBranchSafely(o.project.Root, branch, o.defaultBranchTarget(), force); err != nil {
			return model.Err("git_error", err.Error())
		}
		return model.Ok(map[string]string{"branch": branch, "status": "branch_deleted"})
	}

	if hasWorktree {
		if result := o.Stop(branch, true); !result.Success {
			return result
		}
	}

	if err := o.removeAllPerWorktreeVolumes(branch); err != nil {
		return model.Err("general_error", fmt.Sprintf("removing volumes: %s", err))
	}

	if hasWorktree {
		if err := o.git.Remove(o.project.Root, worktreePath, true); err != nil {
			return model.Err("general_error", fmt.Sprintf("removing worktree directory: %s", err))
		}
	}

	if deleteBranch && hasBranch {
		if err := o.git.DeleteBranchSafely(o.project.Root, branch, o.defaultBranchTarget(), force); err != nil {
			return model.Err("git_error", err.Error())
		}
	}

	return model.Ok(map[string]string{"branch": branch, "status": "removed"})
}

// Delete is an alias for Remove with deleteBranch always true.
func (o *WorktreeOrchestrator) Delete(branch string, force bool) model.Result {
	return o.Remove(branch, force, true)
}

// defaultBranchTarget is the branch merge status is checked against when
// deleting non-forcibly. "main" is this engine's own default; projects using
// a different trunk name configure protection, not this target, so a fixed
// value is sufficient here.
func (o *WorktreeOrchestrator) defaultBranchTarget() string {
	return "main"
}

func (o *WorktreeOrchestrator) anyPerWorktreeVolumeExists(branch string) bool {
	ctx, cancel := withTimeout(inspectTimeout)
	defer cancel()
	for _, name := range o.perWorktreeVolumes(branch) {
		if exists, err := o.vol.Exists(ctx, name); err == nil && exists {
			return true
		}
	}
	return false
}

func (o *WorktreeOrchestrator) removeAllPerWorktreeVolumes(branch string) error {
	ctx, cancel := withTimeout(volumeOpTimeout)
	defer cancel()
	for _, name := range o.perWorktreeVolumes(branch) {
		if err := o.vol.Remove(ctx, name, true); err != nil {
			return err
		}
	}
	return nil
}
