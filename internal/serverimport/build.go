package serverimport

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/pathutil"
	"github.com/catalpainternational/dockertree/internal/runtime"
)

const buildTimeout = 600 * time.Second

func composeOutputPath(worktreePath string) string {
	return filepath.Join(worktreePath, ".dockertree", "docker-compose.yml")
}

// buildImages rebuilds a branch's Docker images, clearing the BuildKit
// mount-cache first and retrying once with --no-cache if the cached build
// fails.
func (pc *projectContext) buildImages(ctx context.Context, branch string) error {
	clearBuildCache(ctx)

	worktreePath := pathutil.WorktreePath(pc.project.Root, pc.project.WorktreeDir, branch)
	opts := runtime.RunOptions{
		WorkingDir:   worktreePath,
		ComposeFiles: []string{composeOutputPath(worktreePath)},
		EnvFile:      pathutil.EnvDockertreeFilePath(worktreePath),
		ProjectName:  config.ComposeProjectName(pc.project.Name, branch),
	}

	buildCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	runner := runtime.NewComposeRunner(buildCtx)
	_, err := runner.Run(buildCtx, opts, "build")
	cancel()
	if err == nil {
		return nil
	}

	noCacheCtx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()
	runner = runtime.NewComposeRunner(noCacheCtx)
	if _, retryErr := runner.Run(noCacheCtx, opts, "build", "--no-cache"); retryErr != nil {
		return fmt.Errorf("building images for branch %q (cached build failed: %s): %w", branch, err, retryErr)
	}
	return nil
}

// clearBuildCache drops BuildKit's exec mount cache before a rebuild.
// Failures are non-fatal: an unsupported or already-empty cache is not
// worth aborting the import over.
func clearBuildCache(ctx context.Context) {
	_ = exec.CommandContext(ctx, "docker", "builder", "prune", "-f", "--filter", "type=exec.cachemount").Run()
}
