package orchestrator

import (
	"context"
	"path/filepath"
	"time"

	"github.com/catalpainternational/dockertree/internal/compose"
	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/environment"
	"github.com/catalpainternational/dockertree/internal/gitwt"
	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/proxy"
	"github.com/catalpainternational/dockertree/internal/runtime"
	"github.com/catalpainternational/dockertree/internal/volume"
)

// Per-call timeouts for operations that shell out to Docker/compose (a
// budget, not a retry policy): volume clone/copy work gets the most
// headroom, inspections the least.
const (
	volumeOpTimeout    = 300 * time.Second
	composeDownTimeout = 60 * time.Second
	composeUpTimeout   = 600 * time.Second
	inspectTimeout     = 10 * time.Second
)

// withTimeout returns a context bounded by d, along with its cancel func.
// Callers defer the cancel immediately.
func withTimeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}

// baseComposeFile is the project's own compose document, read from the
// project root and transformed per branch.
const baseComposeFile = "docker-compose.yml"

// WorktreeOrchestrator is the top-level create/start/stop/remove/delete/
// list/info state machine for branch environments. It composes the runtime
// adapter, volume manager, environment generator, git/worktree manager, and
// proxy manager.
type WorktreeOrchestrator struct {
	project *model.Project
	client  *runtime.Client

	git   *gitwt.Manager
	vol   *volume.Manager
	env   *environment.Generator
	proxy *proxy.Manager
}

// New builds a WorktreeOrchestrator bound to project and client. proxyMgr
// may be nil for operations (like list/info) that never touch the shared
// proxy.
func New(project *model.Project, client *runtime.Client, proxyMgr *proxy.Manager) *WorktreeOrchestrator {
	return &WorktreeOrchestrator{
		project: project,
		client:  client,
		git:     gitwt.NewManager(),
		vol:     volume.NewManager(client),
		env:     environment.NewGenerator(),
		proxy:   proxyMgr,
	}
}

// worktreePath returns the expected checkout path for branch under this
// orchestrator's project.
func (o *WorktreeOrchestrator) worktreePath(branch string) string {
	return filepath.Join(o.project.Root, o.project.WorktreeDir, branch)
}

// composeOutputPath returns where the transformed per-branch compose
// document lives inside a worktree.
func composeOutputPath(worktreePath string) string {
	return filepath.Join(worktreePath, ".dockertree", "docker-compose.yml")
}

// composeProjectName computes this orchestrator's project's compose
// project name for branch.
func (o *WorktreeOrchestrator) composeProjectName(branch string) string {
	return config.ComposeProjectName(o.project.Name, branch)
}

// domain computes the default routable hostname for branch.
func (o *WorktreeOrchestrator) domain(branch string) string {
	return config.Domain(o.project.Name, branch)
}

// perWorktreeVolumes returns the map of volume-type -> volume-name for
// branch's three known volume types.
func (o *WorktreeOrchestrator) perWorktreeVolumes(branch string) map[string]string {
	volumes := make(map[string]string, len(model.KnownVolumeTypes))
	for _, t := range model.KnownVolumeTypes {
		volumes[string(t)] = config.VolumeName(o.project.Name, branch, t)
	}
	return volumes
}

// sourceVolumes returns the map of volume-type -> canonical source volume
// name, the templates per-worktree volumes are cloned from.
func (o *WorktreeOrchestrator) sourceVolumes() map[string]string {
	volumes := make(map[string]string, len(model.KnownVolumeTypes))
	for _, t := range model.KnownVolumeTypes {
		volumes[string(t)] = config.SourceVolumeName(o.project.Name, t)
	}
	return volumes
}

// transformCompose loads the project's base compose document and writes the
// branch-scoped transformed document into worktreePath/.dockertree/.
func (o *WorktreeOrchestrator) transformCompose(branch, worktreePath string) ([]string, error) {
	basePath := filepath.Join(o.project.Root, baseComposeFile)

	project, err := compose.Load(basePath)
	if err != nil {
		return nil, err
	}

	cfg := compose.Config{
		ComposeProjectName: o.composeProjectName(branch),
		ProjectRoot:        o.project.Root,
		WorktreeDir:        o.project.WorktreeDir,
		ProxyNetwork:       o.project.CaddyNetwork,
	}

	project = compose.CleanLegacy(project, cfg)

	transformed, warnings, err := compose.Transform(project, cfg)
	if err != nil {
		return nil, err
	}

	if err := compose.Write(transformed, composeOutputPath(worktreePath)); err != nil {
		return nil, err
	}

	return warnings, nil
}
