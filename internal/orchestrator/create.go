package orchestrator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/gitwt"
	"github.com/catalpainternational/dockertree/internal/model"
)

// dockertreeDirName is the per-project metadata directory copied into every
// new worktree (fractal design: each checkout carries its own copy).
const dockertreeDirName = ".dockertree"

// worktreesSubdir is excluded from the fractal copy — a worktree's own
// .dockertree never nests the project's worktrees tree under it.
const worktreesSubdir = "worktrees"

// Create provisions a new branch environment: a linked Git worktree, a
// fractal copy of the project's .dockertree directory, cloned per-branch
// volumes, and generated env files. It does not start any containers.
func (o *WorktreeOrchestrator) Create(branch string) model.Result {
	if err := model.ValidateBranchName(branch); err != nil {
		return model.Err("invalid_branch_name", err.Error())
	}
	if config.IsReservedName(branch) {
		return model.Err("reserved_name", fmt.Sprintf("%q collides with an engine subcommand name", branch))
	}

	worktreePath := o.worktreePath(branch)

	hasDir := dirExists(worktreePath)
	isWorktree := o.git.IsWorktree(worktreePath)
	branchExists := o.git.BranchExists(o.project.Root, branch)

	switch {
	case hasDir && isWorktree:
		return model.OkWithMessage(map[string]string{
			"branch":        branch,
			"worktree_path": worktreePath,
			"status":        "already_exists",
		}, fmt.Sprintf("worktree for %q already exists", branch))
	case hasDir && !isWorktree:
		return model.Err("corrupted_worktree",
			fmt.Sprintf("%s exists but is not a registered Git worktree", worktreePath))
	case !hasDir && branchExists && o.branchIsCheckedOutElsewhere(branch):
		return model.Err("corrupted_worktree",
			fmt.Sprintf("branch %q is registered to a worktree whose directory is missing", branch))
	}

	if err := o.git.Add(o.project.Root, branch, worktreePath, ""); err != nil {
		switch gitwt.ClassifyAddFailure(err) {
		case gitwt.AddFailureAlreadyExists:
			return model.OkWithMessage(map[string]string{
				"branch":        branch,
				"worktree_path": worktreePath,
				"status":        "already_exists",
			}, fmt.Sprintf("worktree for %q already exists", branch))
		case gitwt.AddFailurePermissionDenied:
			return model.Err("permission_denied", err.Error())
		default:
			return model.Err("git_error", err.Error())
		}
	}

	if err := copyDockertreeDir(o.project.Root, worktreePath); err != nil {
		return model.Err("general_error", fmt.Sprintf("copying %s into worktree: %s", dockertreeDirName, err))
	}

	ctx, cancel := withTimeout(volumeOpTimeout)
	defer cancel()
	sourceVols := o.sourceVolumes()
	targetVols := o.perWorktreeVolumes(branch)
	if err := o.vol.CloneVolumes(ctx, sourceVols, targetVols, true); err != nil {
		return model.Err("general_error", fmt.Sprintf("cloning volumes for %s: %s", branch, err))
	}

	worktreesRoot := filepath.Join(o.project.Root, o.project.WorktreeDir)
	if _, err := o.env.CreateWorktreeEnv(o.project.Name, branch, worktreePath, o.project.Root, worktreesRoot, "", ""); err != nil {
		return model.Err("general_error", fmt.Sprintf("generating env files: %s", err))
	}

	return model.Ok(map[string]string{
		"branch":        branch,
		"worktree_path": worktreePath,
		"status":        "created",
	})
}

// branchIsCheckedOutElsewhere reports whether branch is attached to some
// worktree entry whose directory no longer exists on disk — the corrupted
// "VCS entry without a directory" half of the detection pair.
func (o *WorktreeOrchestrator) branchIsCheckedOutElsewhere(branch string) bool {
	entries, err := o.git.List(o.project.Root)
	if err != nil {
		return false
	}
	refName := "refs/heads/" + branch
	for _, e := range entries {
		if e.Branch == refName {
			return !dirExists(e.Path)
		}
	}
	return false
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// copyDockertreeDir copies projectRoot/.dockertree into worktreePath/.dockertree,
// excluding the worktrees/ subdirectory, and ensures README.md is present in
// the copy (synthesizing a minimal one when the source has none). When the
// project has no .dockertree directory at all, an empty one is created and
// no README.md is written.
func copyDockertreeDir(projectRoot, worktreePath string) error {
	src := filepath.Join(projectRoot, dockertreeDirName)
	dst := filepath.Join(worktreePath, dockertreeDirName)

	if _, err := os.Stat(src); os.IsNotExist(err) {
		return os.MkdirAll(dst, 0o755)
	}

	if err := copyTree(src, dst, filepath.Join(src, worktreesSubdir)); err != nil {
		return err
	}

	readme := filepath.Join(dst, "README.md")
	if _, err := os.Stat(readme); os.IsNotExist(err) {
		content := fmt.Sprintf("# %s\n\nDockertree metadata for this worktree.\n", dockertreeDirName)
		if err := os.WriteFile(readme, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", readme, err)
		}
	}

	return nil
}

// copyTree recursively copies src to dst, skipping the exact path excluded
// (and anything beneath it).
func copyTree(src, dst, excluded string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == excluded {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}
		return copyFile(path, target, info.Mode().Perm())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
