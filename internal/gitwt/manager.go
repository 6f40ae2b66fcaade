package gitwt

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/model"
)

// WorktreeInfo holds metadata about a single Git worktree entry as parsed
// from `git worktree list --porcelain` output.
type WorktreeInfo struct {
	// Path is the absolute filesystem path to the worktree directory.
	Path string

	// Branch is the full branch reference (e.g. "refs/heads/main"). Empty
	// if the worktree is in a detached HEAD state.
	Branch string

	// HEAD is the commit SHA the worktree currently points to.
	HEAD string

	// IsBare marks a bare-repository worktree entry.
	IsBare bool
}

// AddFailureKind classifies why `git worktree add` failed, since git reports
// these distinct cases only through message text.
type AddFailureKind string

const (
	AddFailureNone             AddFailureKind = ""
	AddFailureAlreadyExists    AddFailureKind = "already_exists"
	AddFailurePermissionDenied AddFailureKind = "permission_denied"
	AddFailureOther            AddFailureKind = "other"
)

// ClassifyAddFailure inspects an error returned by Add and reports which
// kind of failure it represents.
func ClassifyAddFailure(err error) AddFailureKind {
	if err == nil {
		return AddFailureNone
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already exists") || strings.Contains(msg, "already checked out"):
		return AddFailureAlreadyExists
	case strings.Contains(msg, "permission denied"):
		return AddFailurePermissionDenied
	default:
		return AddFailureOther
	}
}

// Manager provides Git worktree and branch operations by invoking the git
// CLI in a given repository.
type Manager struct{}

// NewManager creates a new Manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add creates a worktree at worktreePath on branch, creating the branch from
// baseBranch (HEAD if empty) when it does not already exist.
func (m *Manager) Add(repoPath, branch, worktreePath, baseBranch string) error {
	if m.BranchExists(repoPath, branch) {
		_, err := runGit(repoPath, "worktree", "add", worktreePath, branch)
		return err
	}

	args := []string{"worktree", "add", "-b", branch, worktreePath}
	if baseBranch != "" {
		args = append(args, baseBranch)
	}

	_, err := runGit(repoPath, args...)
	return err
}

// List returns every worktree registered against the repository.
func (m *Manager) List(repoPath string) ([]WorktreeInfo, error) {
	output, err := runGit(repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelainOutput(output), nil
}

// Remove deletes the worktree at worktreePath via `git worktree remove`.
// When the VCS itself refuses to remove it (commonly a permissions issue
// affecting administrative files, not the working tree) it falls back to
// pruning stale entries and recursively deleting the directory by hand.
func (m *Manager) Remove(repoPath, worktreePath string, force bool) error {
	args := []string{"worktree", "remove", worktreePath}
	if force {
		args = []string{"worktree", "remove", "--force", worktreePath}
	}

	_, err := runGit(repoPath, args...)
	if err == nil {
		return nil
	}

	if _, pruneErr := runGit(repoPath, "worktree", "prune"); pruneErr != nil {
		return err
	}
	if rmErr := os.RemoveAll(worktreePath); rmErr != nil {
		return model.WrapCLIError(model.ExitPermissionDenied,
			fmt.Sprintf("manual cleanup of worktree directory %s failed after git refused removal", worktreePath), rmErr)
	}
	return nil
}

// PruneWorktrees removes administrative files for worktrees whose
// directories no longer exist on disk.
func (m *Manager) PruneWorktrees(repoPath string) error {
	_, err := runGit(repoPath, "worktree", "prune")
	return err
}

// IsWorktree reports whether path is a linked worktree (as opposed to the
// main repository checkout), identified by a .git FILE containing a
// "gitdir:" pointer rather than a .git directory.
func (m *Manager) IsWorktree(path string) bool {
	gitPath := filepath.Join(path, ".git")

	info, err := os.Lstat(gitPath)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	content, err := os.ReadFile(gitPath)
	if err != nil {
		return false
	}
	return strings.HasPrefix(string(content), "gitdir:")
}

// GetRepoRoot returns the top-level directory of the working tree
// containing path.
func (m *Manager) GetRepoRoot(path string) (string, error) {
	output, err := runGit(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// GetCurrentBranch returns the branch checked out at path, or "HEAD" in a
// detached-HEAD state.
func (m *Manager) GetCurrentBranch(path string) (string, error) {
	output, err := runGit(path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(output), nil
}

// BranchExists reports whether branch resolves to a ref in the repository.
func (m *Manager) BranchExists(repoPath, branch string) bool {
	_, err := runGit(repoPath, "rev-parse", "--verify", branch)
	return err == nil
}

// IsBranchMerged reports whether branch's tip is an ancestor of target
// (typically the project's default branch).
func (m *Manager) IsBranchMerged(repoPath, branch, target string) bool {
	_, err := runGit(repoPath, "merge-base", "--is-ancestor", branch, target)
	return err == nil
}

// DeleteBranchSafely deletes branch unless it is protected, currently
// checked out somewhere, or unmerged into target (force overrides the
// unmerged check only). Protected branches are always refused regardless
// of force.
func (m *Manager) DeleteBranchSafely(repoPath, branch, target string, force bool) error {
	if config.IsProtectedBranch(branch) {
		return model.NewCLIError(model.ExitProtectedBranch, fmt.Sprintf("refusing to delete protected branch %q", branch))
	}

	current, err := m.GetCurrentBranch(repoPath)
	if err == nil && current == branch {
		return model.NewCLIError(model.ExitConflict, fmt.Sprintf("branch %q is currently checked out", branch))
	}

	flag := "-d"
	if force || m.IsBranchMerged(repoPath, branch, target) {
		if force {
			flag = "-D"
		}
	} else {
		return model.NewCLIError(model.ExitConflict,
			fmt.Sprintf("branch %q is not merged into %q; use force to delete anyway", branch, target))
	}

	_, err = runGit(repoPath, "branch", flag, branch)
	return err
}

// runGit executes git with args against repoPath (via -C, rather than
// changing the process working directory, so concurrent calls against
// different repositories never race).
func runGit(repoPath string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)

	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}

// parsePorcelainOutput parses `git worktree list --porcelain` output.
func parsePorcelainOutput(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	var current *WorktreeInfo
	for _, line := range lines {
		if line == "" {
			if current != nil {
				worktrees = append(worktrees, *current)
				current = nil
			}
			continue
		}

		key, value, _ := strings.Cut(line, " ")

		switch key {
		case "worktree":
			current = &WorktreeInfo{Path: value}
		case "HEAD":
			if current != nil {
				current.HEAD = value
			}
		case "branch":
			if current != nil {
				current.Branch = value
			}
		case "bare":
			if current != nil {
				current.IsBare = true
			}
		}
	}

	if current != nil {
		worktrees = append(worktrees, *current)
	}

	return worktrees
}
