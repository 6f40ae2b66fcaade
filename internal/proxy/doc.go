// Package proxy manages the shared Caddy reverse-proxy container and its
// label-watching sidecar: the single entry point every branch environment's
// web service becomes reachable through at "{project}-{branch}.localhost", the
// compose project name plus ".localhost" (or a configured domain).
//
// There is no per-branch proxy — one Caddy instance, on the shared external
// network every branch environment also joins, discovers routes from
// container labels via the watcher container. This package only manages
// that shared instance's lifecycle (start/stop/status), not per-branch
// routing, which internal/compose's label rules handle.
package proxy
