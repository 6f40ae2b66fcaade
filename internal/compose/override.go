package compose

import (
	"github.com/compose-spec/compose-go/v2/types"
)

// IsWebService reports whether name is one of the services Transform treats
// as web-facing (the set eligible for proxy labels and the shared proxy
// network).
func IsWebService(name string) bool {
	return webServiceNames[name]
}

// UpdateProxyLabels rewrites svc's caddy.proxy* labels to point at host and
// ensures it is attached to proxyNetwork, inserting whichever is missing.
// Used to patch an already-transformed compose document in place (domain/IP
// override application) without re-running the full Transform pipeline.
func UpdateProxyLabels(svc *types.ServiceConfig, host, proxyNetwork string) {
	applyWebLabelsAndNetwork(svc, Config{OverrideHost: host, ProxyNetwork: proxyNetwork})
}

// StripFrontendBindMounts removes bind-mounted volumes from every service
// isFrontend identifies as a frontend service, so a prod-mode deployment
// doesn't ship with the host's live source tree mounted into the container.
func StripFrontendBindMounts(project *types.Project, isFrontend func(serviceName, buildContext string) bool) {
	for i := range project.Services {
		svc := &project.Services[i]

		buildContext := ""
		if svc.Build != nil {
			buildContext = svc.Build.Context
		}
		if !isFrontend(svc.Name, buildContext) {
			continue
		}

		kept := svc.Volumes[:0]
		for _, v := range svc.Volumes {
			if v.Type == types.VolumeTypeBind {
				continue
			}
			kept = append(kept, v)
		}
		svc.Volumes = kept
	}
}
