// Package volume manages the named Docker volumes backing a branch
// environment: postgres_data, redis_data, and media_files.
//
// Volume operations favor file-level copy through a throwaway Alpine
// helper container over Docker-API volume cloning, because Docker has no
// native "clone a volume" API call — every implementation this tool was
// modeled on (and every example retrieved for this spec) achieves cloning
// by mounting both volumes into a short-lived container and running `cp`
// or `tar`. Manager never touches an in-use Postgres volume directly: for
// any source/target pair it detects and stops the owning container first,
// then restarts it, mirroring the source system's non-destructive clone
// safety rule.
package volume
