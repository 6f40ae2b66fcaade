package volume

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/docker/docker/api/types/volume"

	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/runtime"
)

// helperImage is the throwaway container image used for all file-level
// volume operations (copy, backup, restore, inspection).
const helperImage = "alpine"

// Manager performs lifecycle operations on the named volumes backing a
// branch environment, using the Docker SDK for volume CRUD and short-lived
// Alpine containers (via `docker run`) for file-level data movement.
type Manager struct {
	client *runtime.Client
}

// NewManager builds a Manager bound to the given runtime client.
func NewManager(client *runtime.Client) *Manager {
	return &Manager{client: client}
}

// Exists reports whether a named volume exists.
func (m *Manager) Exists(ctx context.Context, name string) (bool, error) {
	_, err := m.client.Inner().VolumeInspect(ctx, name)
	if err != nil {
		if strings.Contains(err.Error(), "no such volume") {
			return false, nil
		}
		return false, fmt.Errorf("inspecting volume %s: %w", name, err)
	}
	return true, nil
}

// Create creates a named volume if it does not already exist.
func (m *Manager) Create(ctx context.Context, name string) error {
	exists, err := m.Exists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = m.client.Inner().VolumeCreate(ctx, volume.CreateOptions{Name: name})
	if err != nil {
		return model.WrapCLIError(model.ExitRuntimeUnavailable, "creating volume "+name, err)
	}
	return nil
}

// Remove removes a named volume. force detaches it from any stopped
// container still referencing it before removal.
func (m *Manager) Remove(ctx context.Context, name string, force bool) error {
	if err := m.client.Inner().VolumeRemove(ctx, name, force); err != nil {
		if strings.Contains(err.Error(), "no such volume") {
			return nil
		}
		return model.WrapCLIError(model.ExitVolumeInUse, "removing volume "+name, err)
	}
	return nil
}

// CloneVolumes clones every (source, target) pair in sources/targets
// (keyed by volume type, e.g. "postgres_data") into the worktree's own
// volumes. When forceCopy is false, the whole set of target volumes is left
// untouched if every one of them already exists (non-destructive —
// create-worktree-volumes' default behavior). When forceCopy is true, every
// target is (re-)created and overwritten from its source regardless of
// whether it already exists — the behavior Create always requests.
//
// Before copying, any running container with a source volume mounted is
// stopped (Invariant: clone only ever operates on volumes not attached to a
// running container) and restarted once the clone completes, matching the
// source system's stop-once/copy-all/restart-once sequencing.
func (m *Manager) CloneVolumes(ctx context.Context, sources, targets map[string]string, forceCopy bool) error {
	if !forceCopy {
		allExist, err := m.allExist(ctx, targets)
		if err != nil {
			return err
		}
		if allExist {
			return nil
		}
	}

	stopped, err := m.stopContainersUsingVolumes(ctx, sources)
	if err != nil {
		return err
	}
	defer m.restartContainers(ctx, stopped)

	for volType, target := range targets {
		source := sources[volType]
		if err := m.cloneVolume(ctx, source, target, forceCopy); err != nil {
			return err
		}
	}

	return nil
}

// allExist reports whether every volume in names already exists.
func (m *Manager) allExist(ctx context.Context, names map[string]string) (bool, error) {
	for _, name := range names {
		exists, err := m.Exists(ctx, name)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}

// cloneVolume copies source into target. If forceCopy is true and target
// already exists, its contents are cleared first so the copy reflects
// source exactly rather than merging on top of stale data.
func (m *Manager) cloneVolume(ctx context.Context, source, target string, forceCopy bool) error {
	targetExists, err := m.Exists(ctx, target)
	if err != nil {
		return err
	}

	if targetExists && !forceCopy {
		return nil
	}

	if targetExists && forceCopy {
		if err := m.clearVolume(ctx, target); err != nil {
			return err
		}
	} else if err := m.Create(ctx, target); err != nil {
		return err
	}

	sourceExists, err := m.Exists(ctx, source)
	if err != nil {
		return err
	}
	if !sourceExists {
		// Nothing to copy from — an empty target volume is the correct result.
		return nil
	}

	return m.copyFiles(ctx, source, target)
}

// clearVolume deletes every file in a volume via a throwaway helper
// container, in preparation for a force-copy overwrite.
func (m *Manager) clearVolume(ctx context.Context, name string) error {
	args := []string{
		"run", "--rm",
		"-v", name + ":/data",
		helperImage, "sh", "-c", "find /data -mindepth 1 -delete",
	}
	if _, err := runDocker(ctx, args...); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "clearing volume "+name, err)
	}
	return nil
}

// stopContainersUsingVolumes stops every running container with any of
// volumes mounted and returns their IDs, so the caller can restart them once
// the operation that required them stopped completes.
func (m *Manager) stopContainersUsingVolumes(ctx context.Context, volumes map[string]string) ([]string, error) {
	var stopped []string
	for _, name := range volumes {
		containers, err := runtime.ContainersUsingVolume(ctx, m.client, name)
		if err != nil {
			return stopped, err
		}
		for _, c := range containers {
			if c.Status != "running" {
				continue
			}
			if err := runtime.StopContainer(ctx, m.client, c.ContainerID); err != nil {
				return stopped, err
			}
			stopped = append(stopped, c.ContainerID)
		}
	}
	return stopped, nil
}

// restartContainers restarts every container ID previously stopped by
// stopContainersUsingVolumes, best-effort — a restart failure here does not
// unwind the clone that already succeeded.
func (m *Manager) restartContainers(ctx context.Context, containerIDs []string) {
	for _, id := range containerIDs {
		_ = runtime.StartContainer(ctx, m.client, id)
	}
}

// copyFiles runs a helper container that mounts source read-only and target
// read-write, then copies source's contents into target.
func (m *Manager) copyFiles(ctx context.Context, source, target string) error {
	args := []string{
		"run", "--rm",
		"-v", source + ":/source:ro",
		"-v", target + ":/dest",
		helperImage, "sh", "-c", "cp -a /source/. /dest/ 2>/dev/null || true",
	}
	if _, err := runDocker(ctx, args...); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("copying volume files %s -> %s", source, target), err)
	}
	return nil
}

// IsPostgresEmpty inspects a postgres_data volume and reports whether it
// contains only the uninitialized layout (no PG_VERSION or empty base/),
// matching the source system's heuristic for deciding whether clone/restore
// should be allowed to proceed without a confirmation prompt.
func (m *Manager) IsPostgresEmpty(ctx context.Context, name string) (bool, error) {
	script := "test -f /data/PG_VERSION && test -d /data/base && " +
		"find /data/base -mindepth 2 -type f 2>/dev/null | head -1 | grep -q . && echo has_data || echo empty_init"
	args := []string{
		"run", "--rm",
		"-v", name + ":/data:ro",
		helperImage, "sh", "-c", script,
	}
	out, err := runDocker(ctx, args...)
	if err != nil {
		return false, fmt.Errorf("inspecting postgres volume %s: %w", name, err)
	}
	return strings.TrimSpace(out) == "empty_init", nil
}

// Size returns a human-readable disk usage figure for the volume (as
// reported by `du -sh`), or "unknown" if it cannot be determined.
func (m *Manager) Size(ctx context.Context, name string) string {
	args := []string{
		"run", "--rm",
		"-v", name + ":/data:ro",
		helperImage, "du", "-sh", "/data",
	}
	out, err := runDocker(ctx, args...)
	if err != nil {
		return "unknown"
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "unknown"
	}
	return fields[0]
}

// SizeBytes returns a volume's exact disk usage in bytes, as reported by
// `du -sb`. Used where a human-readable figure (Size) isn't precise enough
// to compare against a minimum-data threshold.
func (m *Manager) SizeBytes(ctx context.Context, name string) (int64, error) {
	args := []string{
		"run", "--rm",
		"-v", name + ":/data:ro",
		helperImage, "du", "-sb", "/data",
	}
	out, err := runDocker(ctx, args...)
	if err != nil {
		return 0, fmt.Errorf("measuring volume %s: %w", name, err)
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("unexpected du output for volume %s: %q", name, out)
	}
	var size int64
	if _, err := fmt.Sscanf(fields[0], "%d", &size); err != nil {
		return 0, fmt.Errorf("parsing du output for volume %s: %w", name, err)
	}
	return size, nil
}

// runDocker shells out to the docker CLI for operations best expressed as
// `docker run` invocations (helper containers) rather than SDK calls.
func runDocker(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "docker", args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("docker %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}
