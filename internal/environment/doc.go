// Package environment generates and rewrites the env files a branch
// environment runs with, and allocates the host ports its services bind to.
//
// Port allocation uses three independently-ranged pools — db, redis, web —
// rather than the single shifted-offset band a one-service-per-worktree
// devcontainer setup can get away with, because a branch environment here
// always carries a fixed multi-service shape (web, db, redis). Each pool is
// scanned independently so a previously assigned port survives across
// restarts of the same branch and never collides with another branch's
// pool, using the same OS-level net.Listen availability check this
// package's allocator was generalized from.
package environment
