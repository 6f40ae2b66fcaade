// Package pathutil resolves project and worktree filesystem locations and
// parses/serializes the plain KEY=VALUE .env files dockertree reads and
// writes at several points in a branch environment's lifecycle.
//
// Path resolution walks upward from the current directory looking for a
// .dockertree directory, matching the source system's tolerant detection
// of both fresh and legacy project layouts.
package pathutil
