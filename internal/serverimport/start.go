package serverimport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/catalpainternational/dockertree/internal/runtime"
)

const containerSettleDelay = 5 * time.Second

// ContainerStatus summarizes a branch's containers after startup, mirroring
// what an operator would get from `docker ps` filtered to the branch.
type ContainerStatus struct {
	Running        int      `json:"running"`
	Total          int      `json:"total"`
	Exited         int      `json:"exited"`
	ContainerNames []string `json:"container_names"`
}

// startServices brings a branch's containers up, reusing the same Up path
// branch start normally takes.
func (pc *projectContext) startServices(branch string) error {
	result := pc.orch.Stop(branch, false)
	if !result.Success {
		return fmt.Errorf("stopping existing containers for branch %q: %s", branch, result.Message)
	}

	result = pc.orch.Start(branch)
	if !result.Success {
		return fmt.Errorf("starting containers for branch %q: %s", branch, result.Message)
	}
	return nil
}

// verifyContainers inspects the branch's managed containers after a brief
// settle delay, reporting how many ended up running, total, and exited.
func (pc *projectContext) verifyContainers(ctx context.Context, branch string) (*ContainerStatus, error) {
	time.Sleep(containerSettleDelay)

	containers, err := runtime.ListManagedContainers(ctx, pc.client)
	if err != nil {
		return nil, fmt.Errorf("listing containers: %w", err)
	}

	status := &ContainerStatus{}
	for _, c := range runtime.GroupContainersByBranch(containers)[branch] {
		status.Total++
		switch strings.ToLower(c.Status) {
		case "running":
			status.Running++
			status.ContainerNames = append(status.ContainerNames, c.ContainerName)
		case "exited":
			status.Exited++
		}
	}

	return status, nil
}
