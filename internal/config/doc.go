// Package config loads and sanitizes per-project dockertree configuration
// and computes every name derived from it: the sanitized project name, the
// compose-project name, container names, volume names, and the allowed-hosts
// list for a branch environment.
//
// Config is read from <project_root>/.dockertree/config.yml. When the file
// is missing, Load falls back to defaults (project name taken from the root
// directory's basename, the default worktree directory and proxy network)
// rather than failing, matching the source system's tolerant bootstrap
// behavior. No default services or volumes are filled in.
package config
