package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDirName is the per-project dockertree metadata directory.
const ConfigDirName = ".dockertree"

// FindProjectRoot walks upward from startDir looking for a .dockertree
// directory. It accepts a legacy project that has a .dockertree directory
// but no config.yml inside it — config.Load supplies defaults in that case.
// Returns an error if no .dockertree directory is found before reaching the
// filesystem root.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for {
		candidate := filepath.Join(dir, ConfigDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s directory found above %s", ConfigDirName, startDir)
		}
		dir = parent
	}
}

// WorktreePath returns the expected filesystem path for a branch's worktree
// checkout: {projectRoot}/{worktreeDir}/{branch}.
func WorktreePath(projectRoot, worktreeDir, branch string) string {
	return filepath.Join(projectRoot, worktreeDir, branch)
}

// EnvFilePath returns the path to the top-level .env file within a worktree.
func EnvFilePath(worktreePath string) string {
	return filepath.Join(worktreePath, ".env")
}

// EnvDockertreeFilePath returns the path to the generated environment file
// dockertree writes into a worktree's .dockertree directory, distinct from
// the developer-facing .env file.
func EnvDockertreeFilePath(worktreePath string) string {
	return filepath.Join(worktreePath, ConfigDirName, "env.dockertree")
}

// CopyEnvFile copies the .env file from sourcePath's worktree into
// targetPath's worktree, if one exists. Returns false (with no error) when
// there is nothing to copy. Mirrors the source system's tolerant behavior:
// a missing source .env is not an error, and copying onto itself is a no-op.
func CopyEnvFile(sourceWorktree, targetWorktree string) (bool, error) {
	sourceEnv := EnvFilePath(sourceWorktree)
	targetEnv := EnvFilePath(targetWorktree)

	if _, err := os.Stat(sourceEnv); err != nil {
		return false, nil
	}

	resolvedSource, err := filepath.EvalSymlinks(sourceEnv)
	if err == nil {
		if resolvedTarget, err := filepath.EvalSymlinks(targetEnv); err == nil && resolvedSource == resolvedTarget {
			return true, nil
		}
	}

	data, err := os.ReadFile(sourceEnv)
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", sourceEnv, err)
	}

	if err := os.MkdirAll(filepath.Dir(targetEnv), 0o755); err != nil {
		return false, fmt.Errorf("creating %s: %w", filepath.Dir(targetEnv), err)
	}

	if err := os.WriteFile(targetEnv, data, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", targetEnv, err)
	}

	return true, nil
}

// BranchFromWorktreePath extracts a branch name from a worktree directory
// path by taking its final path component. Used as a fallback when the
// caller cannot determine the branch via `git branch --show-current`.
func BranchFromWorktreePath(worktreePath string) string {
	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return filepath.Base(worktreePath)
	}
	return filepath.Base(abs)
}

// IsUnderWorktreeDir reports whether path is contained within
// {projectRoot}/{worktreeDir}, and if so, returns the branch name derived
// from the first path component below it.
func IsUnderWorktreeDir(path, projectRoot, worktreeDir string) (branch string, ok bool) {
	base := filepath.Join(projectRoot, worktreeDir)

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) == 0 || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}
