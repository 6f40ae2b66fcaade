// Package runtime wraps the Docker Engine SDK client and the `docker
// compose` CLI, giving every other package in this module a single typed
// entry point for talking to the container runtime.
//
// Two execution styles are exposed side by side because the two underlying
// tools serve different purposes: the SDK client (Client) is used for
// inspection and lifecycle queries (ping, list containers/volumes by label),
// while compose orchestration (ComposeRunner) shells out to the `docker
// compose` CLI, since no compose-execution Go library mirrors the CLI's
// exact merge/override/profile semantics.
//
// Design decisions:
//   - Socket auto-detection (DOCKER_HOST, then platform-specific default
//     paths) is unchanged from the source CLI detection order.
//   - ComposeRunner shells out rather than reimplementing the compose
//     engine, mirroring the reference Python implementation's subprocess
//     invocation of `docker compose` / legacy `docker-compose`.
//   - All failures are classified into a small set of Kind values so
//     callers (and the CLI's exit-code translation) don't need to parse
//     stderr text.
package runtime
