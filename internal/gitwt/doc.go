// Package gitwt wraps Git worktree and branch operations for the engine:
// creating, listing, and removing linked checkouts, safe branch deletion,
// and archiving a branch's tree to a compressed tar file.
//
// Like the devcontainer tool this package is adapted from, it shells out to
// the git CLI via os/exec rather than a Go Git library, because worktree
// support in pure-Go implementations lags behind the CLI's own semantics.
// Errors from `git worktree add` are classified — already_exists,
// permission_denied, or other — by inspecting the command's stderr text,
// since `git worktree add` reports these distinct failure modes only
// through its message, not a machine-readable exit code. Other git
// failures are returned unclassified.
package gitwt
