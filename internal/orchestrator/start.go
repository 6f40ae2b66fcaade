package orchestrator

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/pathutil"
	"github.com/catalpainternational/dockertree/internal/runtime"
)

// Start brings a branch environment's containers up: it ensures
// per-worktree volumes exist, starts the shared proxy if it is down (the
// proxy's own start creates the shared network when absent), regenerates the
// env files, writes the transformed compose document, runs `compose up -d`,
// and waits 5s for containers to register. It does not create the shared
// network when the proxy is already running, and it issues no proxy
// reconfigure of its own.
func (o *WorktreeOrchestrator) Start(branch string) model.Result {
	worktreePath := o.worktreePath(branch)
	if !dirExists(worktreePath) {
		return model.Err("not_found", fmt.Sprintf("no worktree for branch %q at %s", branch, worktreePath))
	}

	volCtx, volCancel := withTimeout(volumeOpTimeout)
	sourceVols := o.sourceVolumes()
	targetVols := o.perWorktreeVolumes(branch)
	if err := o.vol.CloneVolumes(volCtx, sourceVols, targetVols, false); err != nil {
		volCancel()
		return model.Err("general_error", fmt.Sprintf("ensuring volumes for %s: %s", branch, err))
	}
	volCancel()

	if o.proxy != nil {
		statusCtx, statusCancel := withTimeout(inspectTimeout)
		status, err := o.proxy.GetStatus(statusCtx)
		statusCancel()
		if err != nil {
			return model.Err("runtime_unavailable", fmt.Sprintf("checking proxy status: %s", err))
		}
		if !status.Running {
			startCtx, startCancel := withTimeout(composeUpTimeout)
			err := o.proxy.Start(startCtx, "")
			startCancel()
			if err != nil {
				return model.Err("runtime_unavailable", fmt.Sprintf("starting shared proxy: %s", err))
			}
		}
	}

	worktreesRoot := filepath.Join(o.project.Root, o.project.WorktreeDir)
	if _, err := o.env.CreateWorktreeEnv(o.project.Name, branch, worktreePath, "", worktreesRoot, "", ""); err != nil {
		return model.Err("general_error", fmt.Sprintf("ensuring env files: %s", err))
	}

	if _, err := o.transformCompose(branch, worktreePath); err != nil {
		return model.Err("general_error", fmt.Sprintf("rendering compose document: %s", err))
	}

	upCtx, upCancel := withTimeout(composeUpTimeout)
	defer upCancel()
	runner := runtime.NewComposeRunner(upCtx)
	opts := runtime.RunOptions{
		WorkingDir:   worktreePath,
		ComposeFiles: []string{composeOutputPath(worktreePath)},
		EnvFile:      pathutil.EnvDockertreeFilePath(worktreePath),
		ProjectName:  o.composeProjectName(branch),
	}
	if err := runner.Up(upCtx, opts); err != nil {
		return model.Err("runtime_unavailable", fmt.Sprintf("starting containers: %s", err))
	}

	time.Sleep(5 * time.Second)
	// The watcher sidecar reconfigures the proxy from container labels on
	// its own event loop; nothing further is required here once containers
	// have had time to register.

	return model.Ok(map[string]string{
		"branch":               branch,
		"worktree_path":        worktreePath,
		"domain":               o.domain(branch),
		"compose_project_name": o.composeProjectName(branch),
	})
}
