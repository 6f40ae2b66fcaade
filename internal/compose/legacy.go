package compose

import (
	"strings"

	"github.com/compose-spec/compose-go/v2/types"
)

// CleanLegacy strips a previously-transformed project back to a plain base
// document: it undoes the ${COMPOSE_PROJECT_NAME}- container name prefix,
// removes proxy labels and the proxy network from every service, and drops
// the proxy's top-level external network declaration. Used when a project
// has been re-pointed at a new base compose file and stale per-branch
// rewrites would otherwise accumulate across repeated transforms.
func CleanLegacy(project *types.Project, cfg Config) *types.Project {
	prefix := "${COMPOSE_PROJECT_NAME}-"

	for i := range project.Services {
		svc := &project.Services[i]

		if strings.HasPrefix(svc.ContainerName, prefix) {
			svc.ContainerName = strings.TrimPrefix(svc.ContainerName, prefix)
		}

		if svc.Labels != nil {
			delete(svc.Labels, "caddy.proxy")
			delete(svc.Labels, "caddy.proxy.reverse_proxy")
		}

		if cfg.ProxyNetwork != "" && svc.Networks != nil {
			delete(svc.Networks, cfg.ProxyNetwork)
		}
	}

	if cfg.ProxyNetwork != "" && project.Networks != nil {
		delete(project.Networks, cfg.ProxyNetwork)
	}

	return project
}
