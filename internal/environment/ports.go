package environment

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/catalpainternational/dockertree/internal/pathutil"
)

// PortPool identifies one of the three independently-ranged reserved port
// bands this package allocates from.
type PortPool string

const (
	// PoolDB is the reserved range for the database service's host port.
	PoolDB PortPool = "db"

	// PoolRedis is the reserved range for the Redis service's host port.
	PoolRedis PortPool = "redis"

	// PoolWeb is the reserved range for the web service's host port.
	PoolWeb PortPool = "web"
)

// portRange is an inclusive [start, end] band of host ports.
type portRange struct {
	start, end int
}

// Each branch environment carries a fixed web/db/redis shape, so each
// service gets its own reserved band rather than sharing a single
// shifted-offset range the way a one-service-per-worktree setup can.
var ranges = map[PortPool]portRange{
	PoolDB:    {55432, 56431},
	PoolRedis: {56379, 57378},
	PoolWeb:   {58000, 58999},
}

// envVarForPool is the scoped env file key a pool's allocated port is
// written under.
var envVarForPool = map[PortPool]string{
	PoolDB:    "DB_HOST_PORT",
	PoolRedis: "REDIS_HOST_PORT",
	PoolWeb:   "WEB_HOST_PORT",
}

// Allocator assigns host ports to branch environments from the three
// reserved pools, scanning scoped env files already on disk so that a port
// previously assigned to a branch survives restarts and is never handed to
// a different branch.
type Allocator struct {
	scanner *Scanner
}

// NewAllocator builds an Allocator.
func NewAllocator() *Allocator {
	return &Allocator{scanner: NewScanner()}
}

// Allocate returns a host port for the given pool and branch. If branch
// already has a port recorded for this pool in an existing scoped env file
// under worktreesRoot (or legacyRoot, when non-empty), that port is reused
// as-is — even if it would otherwise look "in use" by the very env file
// reporting it. Otherwise the lowest free port in the pool's range that is
// neither recorded by another branch nor currently bindable-false on the
// host is returned. If no port qualifies, Allocate returns 0 (meaning "let
// the runtime auto-assign") and a non-nil warning error that callers should
// log rather than fail on.
func (a *Allocator) Allocate(pool PortPool, branch, worktreesRoot, legacyRoot string) (int, error) {
	r, ok := ranges[pool]
	if !ok {
		return 0, fmt.Errorf("unknown port pool %q", pool)
	}
	varName := envVarForPool[pool]

	used, byBranch := a.scanUsedPorts(varName, worktreesRoot, legacyRoot)

	if existing, ok := byBranch[branch]; ok {
		return existing, nil
	}

	for port := r.start; port <= r.end; port++ {
		if used[port] {
			continue
		}
		if !a.scanner.IsPortAvailable(port, "tcp") {
			continue
		}
		return port, nil
	}

	return 0, fmt.Errorf("no available port in %s range %d-%d for branch %q; runtime will auto-assign", pool, r.start, r.end, branch)
}

// scanUsedPorts walks every scoped env file under the given roots looking
// for varName, returning the set of ports already claimed by any branch and
// a branch -> port map for branches that already have one assigned.
func (a *Allocator) scanUsedPorts(varName, worktreesRoot, legacyRoot string) (map[int]bool, map[string]int) {
	used := make(map[int]bool)
	byBranch := make(map[string]int)

	roots := []string{worktreesRoot}
	if legacyRoot != "" && legacyRoot != worktreesRoot {
		roots = append(roots, legacyRoot)
	}

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			branch := entry.Name()
			worktreePath := filepath.Join(root, branch)
			envPath := pathutil.EnvDockertreeFilePath(worktreePath)

			vars, err := pathutil.LoadEnvFile(envPath)
			if err != nil {
				continue
			}
			raw, ok := vars[varName]
			if !ok {
				continue
			}
			port, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || port == 0 {
				continue
			}
			used[port] = true
			byBranch[branch] = port
		}
	}

	return used, byBranch
}
