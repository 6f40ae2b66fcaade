// Package serverimport orchestrates receiving a pushed package on a remote
// host: locating or scaffolding a project, clearing out any stale worktree
// for the target branch, running the package import, restoring volumes that
// come back empty, and optionally building and starting the environment.
package serverimport
