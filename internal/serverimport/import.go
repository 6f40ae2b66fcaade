package serverimport

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/pkgarchive"
)

const proxySettleDelay = 2 * time.Second

// ImportAndStart drives a full remote-receive: locate or scaffold a
// project, clear out any stale worktree, import the package, start the
// shared proxy, restore volumes if the import left any empty, optionally
// rebuild images, and optionally bring the branch's services up.
func (o *Orchestrator) ImportAndStart(ctx context.Context, packagePath, branch string, opts Options) (Result, error) {
	ensureGitIdentity()

	if _, err := os.Stat(packagePath); err != nil {
		return Result{}, fmt.Errorf("package file not found: %s", packagePath)
	}

	projectRoot, found := findExistingProject()
	standalone := !found
	if standalone {
		projectRoot = defaultStandaloneBase
	}

	pc, err := o.buildContext(projectRoot, standalone)
	if err != nil {
		return Result{}, fmt.Errorf("loading project at %s: %w", projectRoot, err)
	}

	if !standalone {
		if err := pc.cleanupExistingWorktree(branch); err != nil {
			return Result{}, fmt.Errorf("cleaning up existing worktree for branch %q: %w", branch, err)
		}
	}

	importResult := pc.pkg.Import(packagePath, pkgarchive.ImportOptions{
		TargetBranch:   branch,
		RestoreData:    true,
		Standalone:     standalone,
		Domain:         opts.Domain,
		IP:             opts.IP,
		Debug:          opts.Debug,
		NonInteractive: true,
	})
	if !importResult.Success {
		return Result{}, fmt.Errorf("%s", importErrorMessage(importResult))
	}

	data, _ := importResult.Data.(map[string]interface{})
	if newRoot, ok := data["project_root"].(string); ok && newRoot != projectRoot {
		pc, err = o.buildContext(newRoot, standalone)
		if err != nil {
			return Result{}, fmt.Errorf("reloading project at %s: %w", newRoot, err)
		}
		projectRoot = newRoot
	}

	var metadata *model.PackageMetadata
	if md, ok := data["metadata"].(*model.PackageMetadata); ok {
		metadata = md
	}

	if pc.proxy != nil {
		if err := pc.proxy.Start(ctx, ""); err != nil {
			return Result{}, fmt.Errorf("starting shared proxy: %w", err)
		}
		time.Sleep(proxySettleDelay)
	}

	// Volumes arriving empty is recoverable by a later manual restore; a
	// failure here doesn't fail the whole import.
	_ = pc.restoreVolumesIfNeeded(ctx, packagePath, branch)

	if opts.Build {
		if err := pc.buildImages(ctx, branch); err != nil {
			return Result{}, fmt.Errorf("building images: %w", err)
		}
	}

	result := Result{
		ProjectRoot: projectRoot,
		Standalone:  standalone,
		Metadata:    metadata,
	}

	if opts.Start {
		if err := pc.startServices(branch); err != nil {
			return Result{}, fmt.Errorf("starting services: %w", err)
		}

		status, err := pc.verifyContainers(ctx, branch)
		if err != nil {
			return Result{}, fmt.Errorf("verifying containers: %w", err)
		}
		if status.Running == 0 {
			return Result{}, fmt.Errorf("branch %q started but no containers are running (total=%d, exited=%d)", branch, status.Total, status.Exited)
		}
		result.Containers = status
	}

	return result, nil
}

func importErrorMessage(result model.Result) string {
	if result.Error != nil {
		return result.Error.Message
	}
	return result.Message
}
