package serverimport

import (
	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/gitwt"
	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/orchestrator"
	"github.com/catalpainternational/dockertree/internal/pkgarchive"
	"github.com/catalpainternational/dockertree/internal/proxy"
	"github.com/catalpainternational/dockertree/internal/runtime"
	"github.com/catalpainternational/dockertree/internal/volume"
)

// defaultStandaloneBase is the well-known directory used for a fresh
// project when no existing one can be found on the host.
const defaultStandaloneBase = "/root/dockertree-standalone"

// maxProjectSearchDepth bounds how many directory levels under each search
// root are walked looking for .dockertree/config.yml.
const maxProjectSearchDepth = 3

// searchRoots are the well-known locations scanned for an existing project,
// mirroring the source system's habit of running as root on a fresh host.
var searchRoots = []string{"/root", "/home"}

// Options configures ImportAndStart.
type Options struct {
	Domain string
	IP     string
	Build  bool
	Debug  bool
	Start  bool
}

// Result reports the outcome of a remote import.
type Result struct {
	ProjectRoot string                 `json:"project_root"`
	Standalone  bool                   `json:"standalone"`
	Containers  *ContainerStatus       `json:"containers,omitempty"`
	Metadata    *model.PackageMetadata `json:"metadata,omitempty"`
}

// Orchestrator drives the remote-receive workflow. It owns a runtime client
// and the shared proxy manager; everything else (git identity, worktree
// cleanup, package import, volume verification, build/start) is composed
// per call from the project root it detects or scaffolds.
type Orchestrator struct {
	client *runtime.Client
	proxy  *proxy.Manager
	git    *gitwt.Manager
}

// New builds an Orchestrator. proxyMgr drives the shared Caddy proxy that
// gets started after every successful import.
func New(client *runtime.Client, proxyMgr *proxy.Manager) *Orchestrator {
	return &Orchestrator{
		client: client,
		proxy:  proxyMgr,
		git:    gitwt.NewManager(),
	}
}

// projectContext bundles what every later step needs once a project root
// has been decided.
type projectContext struct {
	project    *model.Project
	standalone bool
	orch       *orchestrator.WorktreeOrchestrator
	vol        *volume.Manager
	pkg        *pkgarchive.Manager
	git        *gitwt.Manager
	client     *runtime.Client
	proxy      *proxy.Manager
}

func (o *Orchestrator) buildContext(projectRoot string, standalone bool) (*projectContext, error) {
	project, err := config.Load(projectRoot)
	if err != nil {
		return nil, err
	}
	vol := volume.NewManager(o.client)
	orch := orchestrator.New(project, o.client, o.proxy)
	pkg := pkgarchive.NewManager(project, o.client, orch, vol)
	return &projectContext{
		project:    project,
		standalone: standalone,
		orch:       orch,
		vol:        vol,
		pkg:        pkg,
		git:        gitwt.NewManager(),
		client:     o.client,
		proxy:      o.proxy,
	}, nil
}
