// Package compose loads a project's base Docker Compose document and
// transforms it into the isolated, per-branch override a worktree runs
// with: container names prefixed per branch, ports turned into internal
// `expose` entries, proxy labels and network attached to web-facing
// services, volume and build-context paths rewritten under the worktree,
// and top-level volumes/networks renamed and declared external.
//
// Unlike the generator this package was adapted from, which hand-rolls a
// small override struct and serializes it directly, this package parses
// through compose-spec/compose-go/v2's loader into its typed
// types.Project tree and mutates that tree field by field — matching how a
// tool meant to produce a document Compose itself will consume should
// stay shaped like Compose's own model, rather than a parallel ad hoc one.
package compose
