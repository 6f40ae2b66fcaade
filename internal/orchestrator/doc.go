// Package orchestrator implements the worktree lifecycle state machine:
// create, start, stop, remove, delete, list, info. It is the single
// exported surface every caller — CLI commands, the package importer
// (internal/pkgarchive), and the server-import workflow
// (internal/serverimport) — goes through; there is no second "manager"
// type duplicating this logic.
//
// Every operation returns a model.Result rather than a bare error: failures
// are classified data, not propagated as panics or bare errors, so a
// structured caller (JSON output, RPC) can react to a {success, data|error}
// shape without string-matching an error message.
package orchestrator
