package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/catalpainternational/dockertree/internal/model"
)

// DefaultCaddyNetwork is the shared external network name joined by the
// proxy and every branch environment's web service.
const DefaultCaddyNetwork = "dockertree_caddy_proxy"

// DefaultWorktreeDir is the relative directory under the project root where
// branch worktrees are checked out.
const DefaultWorktreeDir = "worktrees"

// ConfigRelPath is the path, relative to the project root, of the
// dockertree settings file.
const ConfigRelPath = ".dockertree/config.yml"

// ProtectedBranches cannot be removed or deleted through the engine.
var ProtectedBranches = map[string]bool{
	"main":       true,
	"master":     true,
	"develop":    true,
	"production": true,
	"staging":    true,
}

// ReservedNames are engine subcommand names; a branch may not be created
// with one of these names since it would collide with CLI invocation.
var ReservedNames = map[string]bool{
	"create":   true,
	"start":    true,
	"stop":     true,
	"remove":   true,
	"delete":   true,
	"list":     true,
	"info":     true,
	"volumes":  true,
	"proxy":    true,
	"packages": true,
	"push":     true,
}

// IsProtectedBranch reports whether branch is in the protected set.
func IsProtectedBranch(branch string) bool {
	return ProtectedBranches[strings.ToLower(branch)]
}

// IsReservedName reports whether name collides with an engine subcommand.
func IsReservedName(name string) bool {
	return ReservedNames[strings.ToLower(name)]
}

// rawConfig mirrors the on-disk YAML shape of .dockertree/config.yml.
type rawConfig struct {
	ProjectName  string                          `yaml:"project_name"`
	CaddyNetwork string                          `yaml:"caddy_network"`
	WorktreeDir  string                           `yaml:"worktree_dir"`
	Services     map[string]model.ServiceConfig  `yaml:"services"`
	Volumes      []string                        `yaml:"volumes"`
	Environment  map[string]string                `yaml:"environment"`
	Deployment   *model.Deployment                `yaml:"deployment"`
}

// Load reads {projectRoot}/.dockertree/config.yml and returns a populated
// model.Project. A missing config file is not an error: defaults are
// derived from projectRoot's basename, matching the source system's
// tolerant bootstrap (spec §4.1 "Failure: missing config → fall back to
// sensible defaults").
func Load(projectRoot string) (*model.Project, error) {
	configPath := filepath.Join(projectRoot, ConfigRelPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultProject(projectRoot), nil
		}
		return nil, fmt.Errorf("reading %s: %w", configPath, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("invalid YAML in %s", configPath), err)
	}

	project := defaultProject(projectRoot)
	if raw.ProjectName != "" {
		project.Name = raw.ProjectName
	}
	if raw.CaddyNetwork != "" {
		project.CaddyNetwork = raw.CaddyNetwork
	}
	if raw.WorktreeDir != "" {
		project.WorktreeDir = raw.WorktreeDir
	}
	if raw.Services != nil {
		project.Services = raw.Services
	}
	if raw.Volumes != nil {
		project.Volumes = raw.Volumes
	}
	if raw.Environment != nil {
		project.Environment = raw.Environment
	}
	if raw.Deployment != nil {
		project.Deployment = raw.Deployment
	}

	return project, nil
}

// defaultProject builds the fallback Project used when no config.yml is
// present, or as the base that an on-disk config overlays onto.
func defaultProject(projectRoot string) *model.Project {
	return &model.Project{
		Name:         filepath.Base(projectRoot),
		Root:         projectRoot,
		WorktreeDir:  DefaultWorktreeDir,
		CaddyNetwork: DefaultCaddyNetwork,
	}
}

// Save writes project's config back to {project.Root}/.dockertree/config.yml,
// creating the .dockertree directory if needed. Used only by project setup
// (§9 design note: "the project-setup step edits developer-facing files;
// this is not part of the engine proper").
func Save(project *model.Project) error {
	dir := filepath.Join(project.Root, ".dockertree")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	raw := rawConfig{
		ProjectName:  project.Name,
		CaddyNetwork: project.CaddyNetwork,
		WorktreeDir:  project.WorktreeDir,
		Services:     project.Services,
		Volumes:      project.Volumes,
		Environment:  project.Environment,
		Deployment:   project.Deployment,
	}

	data, err := yaml.Marshal(&raw)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}
	return nil
}

// nonAlphanumRegex matches any rune outside [a-z0-9-] once the input has
// already been lowercased and had underscores replaced with hyphens.
var nonAlphanumRegex = regexp.MustCompile(`[^a-z0-9-]`)

// SanitizeProjectName lowercases s, replaces underscores with hyphens,
// replaces every other non [a-z0-9-] character with a hyphen, and trims
// leading/trailing hyphens. It is idempotent: SanitizeProjectName applied
// to its own output returns the same string.
func SanitizeProjectName(s string) string {
	lowered := strings.ToLower(s)
	lowered = strings.ReplaceAll(lowered, "_", "-")
	lowered = nonAlphanumRegex.ReplaceAllString(lowered, "-")
	return strings.Trim(lowered, "-")
}

// ComposeProjectName computes "{sanitized_project}-{branch}".
func ComposeProjectName(projectName, branch string) string {
	return fmt.Sprintf("%s-%s", SanitizeProjectName(projectName), branch)
}

// Domain computes the default local routable hostname for a branch
// environment: "{compose_project_name}.localhost".
func Domain(projectName, branch string) string {
	return fmt.Sprintf("%s.localhost", ComposeProjectName(projectName, branch))
}

// ContainerName computes "{compose_project_name}-{service}".
func ContainerName(projectName, branch, service string) string {
	return fmt.Sprintf("%s-%s", ComposeProjectName(projectName, branch), service)
}

// VolumeName computes "{compose_project_name}_{type}" for a per-branch
// volume of the given type.
func VolumeName(projectName, branch string, volumeType model.VolumeType) string {
	return fmt.Sprintf("%s_%s", ComposeProjectName(projectName, branch), volumeType)
}

// SourceVolumeName computes the canonical (non-worktree) source volume name
// for the given type, using the *unsanitized* project name for compatibility
// with existing compose declarations that predate dockertree (spec §4.1).
func SourceVolumeName(projectName string, volumeType model.VolumeType) string {
	return fmt.Sprintf("%s_%s", projectName, volumeType)
}

// AllowedHosts builds the comma-separated ALLOWED_HOSTS value for a branch
// environment: always localhost, 127.0.0.1, any extras, the web container
// name, and the literal "web".
func AllowedHosts(projectName, branch string, extras []string) string {
	hosts := []string{"localhost", "127.0.0.1"}
	hosts = append(hosts, extras...)
	hosts = append(hosts, ContainerName(projectName, branch, "web"), "web")
	return strings.Join(hosts, ", ")
}
