package pkgarchive

import (
	"context"
	"time"

	"github.com/catalpainternational/dockertree/internal/gitwt"
	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/orchestrator"
	"github.com/catalpainternational/dockertree/internal/runtime"
	"github.com/catalpainternational/dockertree/internal/volume"
)

// backupOpTimeout bounds a single volume backup/restore call, matching the
// orchestrator's own per-copy/tar budget.
const backupOpTimeout = 300 * time.Second

// Manager performs package export/import/validate/list operations. It
// delegates worktree creation and lookups to a WorktreeOrchestrator rather
// than duplicating Git/compose logic, and uses a volume.Manager directly
// for the backup/restore step C4 already implements.
type Manager struct {
	project *model.Project
	client  *runtime.Client
	orch    *orchestrator.WorktreeOrchestrator
	vol     *volume.Manager
	git     *gitwt.Manager
}

// NewManager builds a Manager bound to project, delegating worktree
// lifecycle operations to orch and volume operations to vol. client is kept
// so standalone imports can build a fresh orchestrator/volume manager pair
// bound to a newly scaffolded project root.
func NewManager(project *model.Project, client *runtime.Client, orch *orchestrator.WorktreeOrchestrator, vol *volume.Manager) *Manager {
	return &Manager{
		project: project,
		client:  client,
		orch:    orch,
		vol:     vol,
		git:     gitwt.NewManager(),
	}
}

func withBackupTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), backupOpTimeout)
}
