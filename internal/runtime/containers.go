package runtime

import (
	"context"
	"os"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/catalpainternational/dockertree/internal/model"
)

// ListManagedContainers queries the Docker daemon for every container
// carrying the dockertree managed-by label, across all branch environments,
// including stopped ones — this is the sole source of truth for "what
// branch environments currently exist" (spec §8).
func ListManagedContainers(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitRuntimeUnavailable,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c, ""))
	}

	return result, nil
}

// containerToInfo converts a Docker API container summary into the domain
// ContainerInfo, taking ServiceName from the compose-service label and
// falling back to fallbackService when that label is absent.
func containerToInfo(c types.Container, fallbackService string) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	serviceName := c.Labels["com.docker.compose.service"]
	if serviceName == "" {
		serviceName = fallbackService
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		ServiceName:   serviceName,
		Status:        c.State,
		Labels:        c.Labels,
	}
}

// GroupContainersByBranch groups containers by their dockertree.branch
// label. Containers missing the label are skipped — this should not happen
// for anything returned by ListManagedContainers.
func GroupContainersByBranch(containers []model.ContainerInfo) map[string][]model.ContainerInfo {
	groups := make(map[string][]model.ContainerInfo)
	for _, c := range containers {
		branch, ok := c.Labels[LabelBranch]
		if !ok || branch == "" {
			continue
		}
		groups[branch] = append(groups[branch], c)
	}
	return groups
}

// BuildBranchEnvironment reconstructs a model.BranchEnvironment from a group
// of containers sharing the same branch label, deriving its aggregate
// status from both container state and whether the worktree directory
// still exists on disk.
func BuildBranchEnvironment(containers []model.ContainerInfo) (*model.BranchEnvironment, string, error) {
	if len(containers) == 0 {
		return nil, "", model.NewCLIError(model.ExitGeneralError, "cannot build branch environment: no containers provided")
	}

	env, projectName, err := ParseLabels(containers[0].Labels)
	if err != nil {
		return nil, "", err
	}

	env.Containers = containers
	env.Status = determineStatus(containers, env.WorktreePath)

	return env, projectName, nil
}

// determineStatus derives the aggregate status of a branch environment:
// orphaned if the worktree directory is gone, running if any container is
// up, stopped otherwise.
func determineStatus(containers []model.ContainerInfo, worktreePath string) model.WorktreeStatus {
	if _, err := os.Stat(worktreePath); os.IsNotExist(err) {
		return model.StatusOrphaned
	}

	for _, c := range containers {
		if c.Status == "running" {
			return model.StatusRunning
		}
	}

	return model.StatusStopped
}

// ContainersUsingVolume lists every container (running or stopped) that has
// volumeName mounted, independent of whether it carries the dockertree
// managed-by label. Used before a volume clone/backup/restore to find a
// project's own canonical containers as well as worktree containers.
func ContainersUsingVolume(ctx context.Context, cli *Client, volumeName string) ([]model.ContainerInfo, error) {
	filterArgs := filters.NewArgs(filters.Arg("volume", volumeName))

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitRuntimeUnavailable,
			"failed to list containers using volume "+volumeName,
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c, ""))
	}

	return result, nil
}

// StartContainer starts a stopped container by ID.
func StartContainer(ctx context.Context, cli *Client, containerID string) error {
	if err := cli.Inner().ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
		return model.WrapCLIError(model.ExitRuntimeUnavailable, "failed to start container "+containerID, err)
	}
	return nil
}

// StopContainer stops a running container by ID, using Docker's default
// graceful-shutdown timeout.
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	if err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return model.WrapCLIError(model.ExitRuntimeUnavailable, "failed to stop container "+containerID, err)
	}
	return nil
}

// RemoveContainer removes a container by ID. When force is true, Docker
// kills the container first.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	if err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{Force: force}); err != nil {
		return model.WrapCLIError(model.ExitRuntimeUnavailable, "failed to remove container "+containerID, err)
	}
	return nil
}
