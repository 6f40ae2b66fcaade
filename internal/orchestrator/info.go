package orchestrator

import (
	"fmt"

	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/runtime"
)

// Info reports everything known about a branch environment: worktree
// existence, computed status, its containers, its per-worktree volumes, and
// its derived domain/project-name identifiers.
func (o *WorktreeOrchestrator) Info(branch string) model.Result {
	worktreePath := o.worktreePath(branch)
	if !dirExists(worktreePath) {
		return model.Err("not_found", fmt.Sprintf("no worktree for branch %q", branch))
	}

	ctx, cancel := withTimeout(inspectTimeout)
	containers, err := runtime.ListManagedContainers(ctx, o.client)
	cancel()
	if err != nil {
		return model.Err("runtime_unavailable", err.Error())
	}

	byBranch := runtime.GroupContainersByBranch(containers)
	branchContainers := byBranch[branch]

	env := &model.BranchEnvironment{
		Branch:       branch,
		WorktreePath: worktreePath,
		Domain:       o.domain(branch),
	}
	if len(branchContainers) > 0 {
		reconstructed, _, err := runtime.BuildBranchEnvironment(branchContainers)
		if err != nil {
			return model.Err("general_error", fmt.Sprintf("reconstructing environment: %s", err))
		}
		env = reconstructed
	} else {
		env.Status = model.StatusStopped
	}
	env.ComposeProjectName = o.composeProjectName(branch)

	volCtx, volCancel := withTimeout(inspectTimeout)
	defer volCancel()
	var volumes []string
	for name, volName := range o.perWorktreeVolumes(branch) {
		exists, err := o.vol.Exists(volCtx, volName)
		if err == nil && exists {
			volumes = append(volumes, fmt.Sprintf("%s:%s", name, volName))
		}
	}
	env.Volumes = volumes

	return model.Ok(env)
}
