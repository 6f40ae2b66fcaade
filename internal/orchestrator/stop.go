package orchestrator

import (
	"fmt"
	"os"

	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/pathutil"
	"github.com/catalpainternational/dockertree/internal/runtime"
)

// Stop brings a branch environment's containers down. It is tolerant of a
// partially-missing environment: a missing worktree, compose file, or env
// file is reported as a successful no-op with a "no_*" status rather than an
// error, since there is nothing left to stop.
func (o *WorktreeOrchestrator) Stop(branch string, removeImages bool) model.Result {
	worktreePath := o.worktreePath(branch)

	if !dirExists(worktreePath) {
		return model.OkWithMessage(map[string]string{"branch": branch, "status": "no_worktree"},
			fmt.Sprintf("no worktree for branch %q", branch))
	}

	composeFile := composeOutputPath(worktreePath)
	if _, err := os.Stat(composeFile); os.IsNotExist(err) {
		return model.OkWithMessage(map[string]string{"branch": branch, "status": "no_compose_file"},
			fmt.Sprintf("no compose file for branch %q", branch))
	}

	envFile := pathutil.EnvDockertreeFilePath(worktreePath)
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return model.OkWithMessage(map[string]string{"branch": branch, "status": "no_env_file"},
			fmt.Sprintf("no env file for branch %q", branch))
	}

	ctx, cancel := withTimeout(composeDownTimeout)
	defer cancel()
	runner := runtime.NewComposeRunner(ctx)
	opts := runtime.RunOptions{
		WorkingDir:   worktreePath,
		ComposeFiles: []string{composeFile},
		EnvFile:      envFile,
		ProjectName:  o.composeProjectName(branch),
	}

	args := []string{"down"}
	if removeImages {
		args = append(args, "--rmi", "local")
	}
	if _, err := runner.Run(ctx, opts, args...); err != nil {
		return model.Err("runtime_unavailable", fmt.Sprintf("stopping containers: %s", err))
	}

	return model.Ok(map[string]string{"branch": branch, "status": "stopped"})
}
