package compose

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/compose-spec/compose-go/v2/types"
)

// webServiceNames is the set of services considered web-facing and thus
// eligible for proxy labels, the shared proxy network, and a reverse-proxy
// target.
var webServiceNames = map[string]bool{
	"web":      true,
	"app":      true,
	"frontend": true,
	"api":      true,
}

// droppedServiceNames exist only at the shared proxy's global scope and
// never belong in a per-branch compose document.
var droppedServiceNames = map[string]bool{
	"caddy":         true,
	"caddy-monitor": true,
}

// appishTokens identify bind-mount/build-context paths that belong inside
// the worktree's own checkout.
var appishTokens = map[string]bool{
	"src": true, "app": true, "code": true, "static": true, "media": true,
	"uploads": true, "logs": true, "tmp": true, "cache": true, "data": true,
	"node_modules": true,
}

// configishTokens identify paths that stay anchored at the project root
// rather than moving into the worktree.
var configishTokens = map[string]bool{
	"config": true, "docker": true, "scripts": true, "templates": true,
	"docs": true, "migrations": true, "fixtures": true, "env": true, ".env": true,
}

// Config holds the per-branch parameters a Transform call needs.
type Config struct {
	ComposeProjectName string
	ProjectRoot        string
	WorktreeDir        string
	ProxyNetwork       string
	ProxyContainerName string
	// OverrideHost, when non-empty, replaces the default "${COMPOSE_PROJECT_NAME}.localhost"
	// host in generated proxy labels (used by domain/IP override application).
	OverrideHost string
}

// Transform rewrites project in place per the eleven numbered rules and
// returns it for chaining, along with any non-fatal warnings callers should
// log. project is mutated directly since its Services slice and map fields
// are owned by the caller's loaded copy.
func Transform(project *types.Project, cfg Config) (*types.Project, []string, error) {
	filterServices(project, cfg)

	for i := range project.Services {
		svc := &project.Services[i]
		applyContainerName(svc, cfg)
		applyPortsToExpose(svc)
		if webServiceNames[svc.Name] {
			applyWebLabelsAndNetwork(svc, cfg)
		}
		applyEnvFiles(svc, cfg)
		applyEnvironmentVars(svc, cfg)
		applyVolumeRewrites(svc, cfg)
		applyBuildRewrites(svc, cfg)
	}

	applyTopLevelVolumes(project, cfg)
	applyNetworks(project, cfg)

	warnings, err := validate(project, cfg)
	if err != nil {
		return nil, nil, err
	}

	return project, warnings, nil
}

func filterServices(project *types.Project, cfg Config) {
	reserved := cfg.ProxyContainerName
	if reserved == "" {
		reserved = "dockertree_caddy_proxy"
	}
	kept := project.Services[:0]
	for _, svc := range project.Services {
		if droppedServiceNames[svc.Name] || svc.Name == "" || svc.Name == reserved {
			continue
		}
		kept = append(kept, svc)
	}
	project.Services = kept
}

func applyContainerName(svc *types.ServiceConfig, cfg Config) {
	prefix := "${COMPOSE_PROJECT_NAME}-"
	if svc.ContainerName != "" {
		if !strings.HasPrefix(svc.ContainerName, prefix) {
			svc.ContainerName = prefix + svc.ContainerName
		}
		return
	}
	svc.ContainerName = prefix + svc.Name
}

func applyPortsToExpose(svc *types.ServiceConfig) {
	if len(svc.Ports) == 0 {
		return
	}

	exposeSet := make(map[string]bool, len(svc.Expose))
	for _, e := range svc.Expose {
		exposeSet[e] = true
	}

	for _, p := range svc.Ports {
		containerPort := strconv.Itoa(int(p.Target))
		if !exposeSet[containerPort] {
			svc.Expose = append(svc.Expose, containerPort)
			exposeSet[containerPort] = true
		}
	}
	svc.Ports = nil
}

func applyWebLabelsAndNetwork(svc *types.ServiceConfig, cfg Config) {
	host := "${COMPOSE_PROJECT_NAME}.localhost"
	if cfg.OverrideHost != "" {
		host = cfg.OverrideHost
	}

	if svc.Labels == nil {
		svc.Labels = types.Labels{}
	}
	svc.Labels["caddy.proxy"] = host
	svc.Labels["caddy.proxy.reverse_proxy"] = fmt.Sprintf("${COMPOSE_PROJECT_NAME}-%s:8000", svc.Name)

	if cfg.ProxyNetwork == "" {
		return
	}
	if svc.Networks == nil {
		svc.Networks = make(map[string]*types.ServiceNetworkConfig)
	}
	if _, ok := svc.Networks[cfg.ProxyNetwork]; !ok {
		svc.Networks[cfg.ProxyNetwork] = nil
	}
}

func applyEnvFiles(svc *types.ServiceConfig, cfg Config) {
	required := []string{
		"${PROJECT_ROOT}/.env",
		"${PROJECT_ROOT}/.dockertree/env.dockertree",
	}

	existing := make(map[string]bool, len(svc.EnvFile))
	for _, e := range svc.EnvFile {
		existing[e] = true
	}
	for _, r := range required {
		if !existing[r] {
			svc.EnvFile = append(svc.EnvFile, r)
			existing[r] = true
		}
	}
}

func applyEnvironmentVars(svc *types.ServiceConfig, cfg Config) {
	if svc.Environment == nil {
		svc.Environment = types.MappingWithEquals{}
	}
	projectName := cfg.ComposeProjectName
	projectRoot := cfg.ProjectRoot
	if _, ok := svc.Environment["COMPOSE_PROJECT_NAME"]; !ok {
		svc.Environment["COMPOSE_PROJECT_NAME"] = &projectName
	}
	if _, ok := svc.Environment["PROJECT_ROOT"]; !ok {
		svc.Environment["PROJECT_ROOT"] = &projectRoot
	}
}

func applyVolumeRewrites(svc *types.ServiceConfig, cfg Config) {
	for i := range svc.Volumes {
		svc.Volumes[i].Source = rewritePath(svc.Volumes[i].Source, cfg)
	}
}

func applyBuildRewrites(svc *types.ServiceConfig, cfg Config) {
	if svc.Build == nil {
		return
	}
	svc.Build.Context = rewritePath(svc.Build.Context, cfg)
	svc.Build.Dockerfile = rewritePath(svc.Build.Dockerfile, cfg)
}

// rewritePath applies the project's path-rewriting rules: "./" becomes
// "${PROJECT_ROOT}/", ".:/app"-style bare-dot sources become
// "${PROJECT_ROOT}", and paths whose leading segment is an "app-ish" token
// move into the worktree directory while "config-ish" tokens stay anchored
// at the project root.
func rewritePath(path string, cfg Config) string {
	if path == "" || strings.Contains(path, "${PROJECT_ROOT}") {
		return path
	}

	if path == "." {
		return "${PROJECT_ROOT}"
	}

	trimmed := strings.TrimPrefix(path, "./")
	first, rest, hasRest := strings.Cut(trimmed, "/")

	switch {
	case appishTokens[first]:
		if hasRest {
			return fmt.Sprintf("${PROJECT_ROOT}/%s/${COMPOSE_PROJECT_NAME}/%s", cfg.WorktreeDir, rest)
		}
		return fmt.Sprintf("${PROJECT_ROOT}/%s/${COMPOSE_PROJECT_NAME}/%s", cfg.WorktreeDir, first)
	case configishTokens[first] || configHasSuffix(first):
		return "${PROJECT_ROOT}/" + trimmed
	default:
		if strings.HasPrefix(path, "./") || path == "." {
			return "${PROJECT_ROOT}/" + trimmed
		}
		return path
	}
}

func configHasSuffix(segment string) bool {
	return strings.HasSuffix(segment, "-config")
}

func applyTopLevelVolumes(project *types.Project, cfg Config) {
	if project.Volumes == nil {
		return
	}
	for name, vol := range project.Volumes {
		if name == "caddy_data" || name == "caddy_config" {
			delete(project.Volumes, name)
			continue
		}
		vol.Name = fmt.Sprintf("%s_%s", cfg.ComposeProjectName, name)
		project.Volumes[name] = vol
	}
}

func applyNetworks(project *types.Project, cfg Config) {
	if cfg.ProxyNetwork == "" {
		return
	}
	if project.Networks == nil {
		project.Networks = types.Networks{}
	}
	project.Networks[cfg.ProxyNetwork] = types.NetworkConfig{
		Name:     cfg.ProxyNetwork,
		External: types.External{External: true},
	}
}

// validate checks the transformed project for duplicate per-service labels
// (a hard error, since Compose would silently let the last one win) and
// returns soft warnings for hardcoded volume names that don't carry the
// compose project name.
func validate(project *types.Project, cfg Config) ([]string, error) {
	for _, svc := range project.Services {
		seenLabelKeys := make(map[string]bool)
		for k := range svc.Labels {
			if seenLabelKeys[k] {
				return nil, fmt.Errorf("service %q has duplicate label %q", svc.Name, k)
			}
			seenLabelKeys[k] = true
		}
	}

	var warnings []string
	for name, vol := range project.Volumes {
		if vol.Name != "" && !strings.Contains(vol.Name, cfg.ComposeProjectName) {
			warnings = append(warnings, fmt.Sprintf("volume %q has a hardcoded name %q not scoped to %s", name, vol.Name, cfg.ComposeProjectName))
		}
	}

	return warnings, nil
}
