package serverimport

import (
	"os/exec"
	"strings"
)

// defaultGitEmail/defaultGitName are written to the global git config when
// no identity is configured at all, so a restored worktree's git operations
// (commits, merges) don't fail on a fresh host with no prior `git config`.
const (
	defaultGitEmail = "dockertree@local"
	defaultGitName  = "Dockertree"
)

// ensureGitIdentity sets a fallback global git user.email/user.name when
// neither is already configured. Failures are non-fatal: a host that
// already has its own identity, or one where `git config` itself fails, is
// left alone rather than treated as an error.
func ensureGitIdentity() {
	ensureGitConfigValue("user.email", defaultGitEmail)
	ensureGitConfigValue("user.name", defaultGitName)
}

func ensureGitConfigValue(key, fallback string) {
	out, err := exec.Command("git", "config", "--global", key).Output()
	if err == nil && strings.TrimSpace(string(out)) != "" {
		return
	}
	_ = exec.Command("git", "config", "--global", key, fallback).Run()
}
