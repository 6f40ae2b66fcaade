package proxy

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"

	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/runtime"
)

// ContainerName is the reserved name for the shared Caddy proxy container.
const ContainerName = "dockertree_caddy_proxy"

// WatcherContainerName is the reserved name for the label-watching sidecar
// that regenerates Caddy's routes from running container labels.
const WatcherContainerName = "caddy_monitor"

// ProjectName is the fixed compose project name the shared proxy's compose
// document is rendered and run under, distinct from any branch's project
// name so `docker compose ls` never confuses the two.
const ProjectName = "dockertree-proxy"

// proxyVolumes are the two named data volumes Caddy's container needs:
// certificate/state storage and its mutable config directory.
var proxyVolumes = []string{"dockertree_caddy_data", "dockertree_caddy_config"}

// Manager controls the shared Caddy proxy's lifecycle.
type Manager struct {
	client        *runtime.Client
	network       string
	composeFile   string
	caddyfile     string
	monitorScript string
}

// NewManager builds a Manager. composeFile/caddyfile/monitorScript are
// paths to the package's bundled templates, and network is the shared
// external network name every branch environment also joins.
func NewManager(client *runtime.Client, proxyNetwork, composeFile, caddyfile, monitorScript string) *Manager {
	return &Manager{
		client:        client,
		network:       proxyNetwork,
		composeFile:   composeFile,
		caddyfile:     caddyfile,
		monitorScript: monitorScript,
	}
}

// Status reports the shared proxy's current state.
type Status struct {
	Running           bool
	ComposeFileExists bool
	CaddyfileExists   bool
	NetworkExists     bool
}

// Start ensures the shared network and data volumes exist, brings the
// Caddy container up (restarting a stopped one in place where possible),
// and runs `compose up -d` against a temporary rendering of the shared
// compose document. After bringing containers up it sleeps briefly to let
// them register; routes are then picked up from container labels by the
// watcher sidecar, not by a call from the caller.
func (m *Manager) Start(ctx context.Context, envFile string) error {
	if err := m.ensureNetwork(ctx); err != nil {
		return err
	}

	if err := m.ensureVolumes(ctx); err != nil {
		return err
	}

	handled, err := m.handleExistingContainer(ctx)
	if err != nil {
		return err
	}
	if handled {
		running, err := m.isRunning(ctx)
		if err != nil {
			return err
		}
		if running {
			return nil
		}
	}

	tempCompose, err := m.renderTempCompose()
	if err != nil {
		return err
	}
	defer os.Remove(tempCompose)

	runner := runtime.NewComposeRunner(ctx)

	opts := runtime.RunOptions{
		ComposeFiles: []string{tempCompose},
		ProjectName:  ProjectName,
	}
	if envFile != "" {
		if _, statErr := os.Stat(envFile); statErr == nil {
			opts.EnvFile = envFile
		}
	}

	if err := runner.Up(ctx, opts); err != nil {
		return fmt.Errorf("starting shared proxy: %w", err)
	}

	time.Sleep(5 * time.Second)
	return nil
}

// Stop renders the same temporary compose document and runs `compose down`
// against it.
func (m *Manager) Stop(ctx context.Context) error {
	tempCompose, err := m.renderTempCompose()
	if err != nil {
		return err
	}
	defer os.Remove(tempCompose)

	runner := runtime.NewComposeRunner(ctx)

	opts := runtime.RunOptions{
		ComposeFiles: []string{tempCompose},
		ProjectName:  ProjectName,
	}
	if err := runner.Down(ctx, opts); err != nil {
		return fmt.Errorf("stopping shared proxy: %w", err)
	}
	return nil
}

// GetStatus reports the shared proxy's running state and whether its
// template files and network are present.
func (m *Manager) GetStatus(ctx context.Context) (Status, error) {
	running, err := m.isRunning(ctx)
	if err != nil {
		return Status{}, err
	}

	_, composeErr := os.Stat(m.composeFile)
	_, caddyErr := os.Stat(m.caddyfile)
	networkExists, err := m.networkExists(ctx)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Running:           running,
		ComposeFileExists: composeErr == nil,
		CaddyfileExists:   caddyErr == nil,
		NetworkExists:     networkExists,
	}, nil
}

func (m *Manager) isRunning(ctx context.Context) (bool, error) {
	info, err := m.client.Inner().ContainerInspect(ctx, ContainerName)
	if err != nil {
		if strings.Contains(err.Error(), "No such container") {
			return false, nil
		}
		return false, fmt.Errorf("inspecting %s: %w", ContainerName, err)
	}
	return info.State != nil && info.State.Running, nil
}

func (m *Manager) containerExists(ctx context.Context) (bool, error) {
	_, err := m.client.Inner().ContainerInspect(ctx, ContainerName)
	if err != nil {
		if strings.Contains(err.Error(), "No such container") {
			return false, nil
		}
		return false, fmt.Errorf("inspecting %s: %w", ContainerName, err)
	}
	return true, nil
}

// handleExistingContainer mirrors the source system's restart-or-recreate
// sequence: if the reserved container is already running, nothing to do.
// If it exists but stopped, try to start it in place; if that fails, remove
// it (and its watcher) so `compose up` can recreate it cleanly. Returns
// true when the caller should treat the container as already handled
// (skip straight to checking isRunning) rather than falling through to
// `compose up`.
func (m *Manager) handleExistingContainer(ctx context.Context) (bool, error) {
	running, err := m.isRunning(ctx)
	if err != nil {
		return false, err
	}
	if running {
		return true, nil
	}

	exists, err := m.containerExists(ctx)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if err := m.client.Inner().ContainerStart(ctx, ContainerName, container.StartOptions{}); err == nil {
		return true, nil
	}

	if err := m.client.Inner().ContainerRemove(ctx, ContainerName, container.RemoveOptions{Force: true}); err != nil {
		return false, fmt.Errorf("removing stale %s: %w", ContainerName, err)
	}
	// The monitor sidecar may not exist; its removal failing is not fatal.
	_ = m.client.Inner().ContainerRemove(ctx, WatcherContainerName, container.RemoveOptions{Force: true})
	return true, nil
}

func (m *Manager) ensureNetwork(ctx context.Context) error {
	exists, err := m.networkExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = m.client.Inner().NetworkCreate(ctx, m.network, network.CreateOptions{
		Driver: "bridge",
	})
	if err != nil {
		return model.WrapCLIError(model.ExitRuntimeUnavailable, "creating proxy network "+m.network, err)
	}
	return nil
}

func (m *Manager) networkExists(ctx context.Context) (bool, error) {
	networks, err := m.client.Inner().NetworkList(ctx, network.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", m.network)),
	})
	if err != nil {
		return false, fmt.Errorf("listing networks: %w", err)
	}
	for _, n := range networks {
		if n.Name == m.network {
			return true, nil
		}
	}
	return false, nil
}

func (m *Manager) ensureVolumes(ctx context.Context) error {
	for _, name := range proxyVolumes {
		if _, err := m.client.Inner().VolumeInspect(ctx, name); err == nil {
			continue
		}
		if _, err := m.client.Inner().VolumeCreate(ctx, volume.CreateOptions{Name: name}); err != nil {
			return model.WrapCLIError(model.ExitRuntimeUnavailable, "creating proxy volume "+name, err)
		}
	}
	return nil
}
