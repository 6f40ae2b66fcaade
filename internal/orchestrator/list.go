package orchestrator

import (
	"strings"

	"github.com/catalpainternational/dockertree/internal/model"
)

// worktreeListEntry is one row of List's result: one non-bare worktree the
// VCS knows about for this repository, wherever it is checked out.
type worktreeListEntry struct {
	Branch string `json:"branch"`
	Path   string `json:"path"`
	Commit string `json:"commit"`
	Status string `json:"status"`
}

// List enumerates every worktree the VCS currently tracks for this project.
func (o *WorktreeOrchestrator) List() model.Result {
	entries, err := o.git.List(o.project.Root)
	if err != nil {
		return model.Err("git_error", err.Error())
	}

	result := make([]worktreeListEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsBare {
			continue
		}
		result = append(result, worktreeListEntry{
			Branch: strings.TrimPrefix(e.Branch, "refs/heads/"),
			Path:   e.Path,
			Commit: e.HEAD,
			Status: "active",
		})
	}

	return model.Ok(result)
}
