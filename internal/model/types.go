package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// WorktreeStatus represents the lifecycle state of a branch environment.
// The state transitions are:
//
//	[Created] → Running → Stopped ⇄ Running → [Removed]
//	Running/Stopped → Orphaned (when the Git worktree is manually deleted)
type WorktreeStatus string

const (
	// StatusRunning indicates at least one container in the environment is running.
	StatusRunning WorktreeStatus = "running"

	// StatusStopped indicates containers exist but are not running.
	// Configuration and data are preserved.
	StatusStopped WorktreeStatus = "stopped"

	// StatusOrphaned indicates the Git worktree directory no longer exists,
	// but Docker resources remain. This typically happens when a user
	// manually deletes the worktree directory.
	StatusOrphaned WorktreeStatus = "orphaned"
)

// String returns the string representation of WorktreeStatus.
func (s WorktreeStatus) String() string {
	return string(s)
}

// IsValid checks whether the WorktreeStatus value is one of the
// predefined valid states.
func (s WorktreeStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusStopped, StatusOrphaned:
		return true
	default:
		return false
	}
}

// ParseWorktreeStatus converts a string to a WorktreeStatus.
// Returns an error if the string does not match any valid status.
func ParseWorktreeStatus(s string) (WorktreeStatus, error) {
	status := WorktreeStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid worktree status: %q (valid: running, stopped, orphaned)", s)
	}
	return status, nil
}

// VolumeType identifies one of the known per-worktree volume kinds. Each
// branch environment clones one volume per known type from the project's
// source volumes on first start.
type VolumeType string

const (
	// VolumePostgresData is the Postgres data directory volume.
	VolumePostgresData VolumeType = "postgres_data"

	// VolumeRedisData is the Redis persistence volume.
	VolumeRedisData VolumeType = "redis_data"

	// VolumeMediaFiles is the application's user-uploaded media volume.
	VolumeMediaFiles VolumeType = "media_files"
)

// KnownVolumeTypes lists every volume type cloned for a new branch
// environment, in the order they are processed.
var KnownVolumeTypes = []VolumeType{VolumePostgresData, VolumeRedisData, VolumeMediaFiles}

// branchNameRegex validates branch names: letters, digits, underscore, dot,
// and hyphen. This matches Git's own permissive branch-name character set
// closely enough for the engine's purposes.
var branchNameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateBranchName checks that a branch name is non-empty and uses only
// the allowed character set. It does not check the protected-branch or
// reserved-name sets; see internal/config for those.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name must not be empty")
	}
	if !branchNameRegex.MatchString(name) {
		return fmt.Errorf("invalid branch name %q: must match ^[A-Za-z0-9_.-]+$", name)
	}
	return nil
}

// Project represents the outer repository that owns one or more branch
// environments. Attributes are loaded from .dockertree/config.yml by
// internal/config; SanitizedName and the derived identifiers are computed,
// never stored.
type Project struct {
	// Name is the raw project name as configured (or the root directory's
	// basename when no config is present).
	Name string `json:"name"`

	// Root is the absolute path to the project root (the directory
	// containing .dockertree/).
	Root string `json:"root"`

	// WorktreeDir is the relative directory under Root where branch
	// worktrees are checked out. Defaults to "worktrees".
	WorktreeDir string `json:"worktreeDir"`

	// CaddyNetwork is the shared external network name joined by the proxy
	// and every branch environment's web service. Defaults to
	// "dockertree_caddy_proxy".
	CaddyNetwork string `json:"caddyNetwork"`

	// Services maps service name to its container-name template, as declared
	// in config.yml. May be empty; no defaults are derived when it is.
	Services map[string]ServiceConfig `json:"services,omitempty"`

	// Volumes lists additional named volumes declared by the project beyond
	// the known types.
	Volumes []string `json:"volumes,omitempty"`

	// Environment holds the environment key/value pairs declared in
	// config.yml. They are loaded and saved with the config; scoped env-file
	// generation does not read them.
	Environment map[string]string `json:"environment,omitempty"`

	// Deployment holds optional default remote-deployment settings.
	Deployment *Deployment `json:"deployment,omitempty"`
}

// ServiceConfig is a single entry of the project config's `services` map.
type ServiceConfig struct {
	// ContainerNameTemplate is the template string for this service's
	// container name, e.g. "${COMPOSE_PROJECT_NAME}-web".
	ContainerNameTemplate string `json:"containerNameTemplate" yaml:"container_name_template"`
}

// Deployment holds remote-host deployment defaults read from config.yml's
// optional `deployment` block. The per-branch env-file deployment settings
// (PUSH_* / DROPLET_* keys) are a separate type, environment.Deployment; the
// push command records those and does not read this struct.
type Deployment struct {
	// DefaultServer is the default SSH host (user@host) for deployments.
	DefaultServer string `json:"defaultServer,omitempty" yaml:"default_server,omitempty"`

	// DefaultDomain is the default production domain for deployments.
	DefaultDomain string `json:"defaultDomain,omitempty" yaml:"default_domain,omitempty"`

	// DefaultIP is the bare-IP deployment target used when no domain is
	// configured.
	DefaultIP string `json:"defaultIp,omitempty" yaml:"default_ip,omitempty"`

	// SSHKey is the path to the private key used to connect to DefaultServer.
	SSHKey string `json:"sshKey,omitempty" yaml:"ssh_key,omitempty"`
}

// BranchEnvironment represents one branch's isolated Docker environment —
// the worktree checkout, its per-branch volumes, containers, and port
// allocations. This is the primary aggregate entity in the domain.
//
// All fields besides Branch and WorktreePath are reconstructed at runtime
// from Docker labels and live container queries; there is no persistent
// state file.
type BranchEnvironment struct {
	// Branch is the Git branch name this environment is tied to.
	Branch string `json:"branch"`

	// WorktreePath is the absolute filesystem path to the Git worktree
	// directory.
	WorktreePath string `json:"worktreePath"`

	// ComposeProjectName is "{sanitized_project}-{branch}".
	ComposeProjectName string `json:"composeProjectName"`

	// Domain is the environment's routable hostname, e.g.
	// "myapp-feature-auth.localhost", or an overridden domain/IP.
	Domain string `json:"domain"`

	// Status is the current lifecycle state of the environment.
	Status WorktreeStatus `json:"status"`

	// Containers holds information about all Docker containers belonging
	// to this environment.
	Containers []ContainerInfo `json:"containers,omitempty"`

	// Volumes lists the per-branch volume names that exist for this
	// environment.
	Volumes []string `json:"volumes,omitempty"`

	// PortAllocations holds all host-port assignments for this environment.
	PortAllocations []PortAllocation `json:"portAllocations,omitempty"`

	// CreatedAt is the timestamp when this environment was created.
	CreatedAt time.Time `json:"createdAt"`
}

// PortAllocation represents a single port mapping between a container port
// and a host port within a branch environment.
//
// Unlike a single offset-shift formula, this domain allocates host ports
// from three independently ranged pools (db, redis, web — see
// internal/environment), scanning existing scoped env files and the host's
// actual bind availability to avoid collisions.
type PortAllocation struct {
	// ServiceName is the Docker Compose service name that owns this port
	// mapping.
	ServiceName string `json:"serviceName"`

	// ContainerPort is the port number inside the container (1-65535).
	ContainerPort int `json:"containerPort"`

	// HostPort is the port number on the host machine. Zero means the
	// allocator could not find a free port in range and the runtime should
	// auto-assign one.
	HostPort int `json:"hostPort"`

	// Protocol is the network protocol for the port mapping. Defaults to
	// "tcp". Also supports "udp".
	Protocol string `json:"protocol"`

	// Label is an optional human-readable description for this port.
	Label string `json:"label,omitempty"`
}

// Validate checks whether the PortAllocation has valid field values.
func (p *PortAllocation) Validate() error {
	if p.ServiceName == "" {
		return fmt.Errorf("port allocation: service name must not be empty")
	}
	if p.ContainerPort < 1 || p.ContainerPort > 65535 {
		return fmt.Errorf("port allocation: container port %d out of range (1-65535)", p.ContainerPort)
	}
	if p.HostPort != 0 && (p.HostPort < 1 || p.HostPort > 65535) {
		return fmt.Errorf("port allocation: host port %d out of range (1-65535)", p.HostPort)
	}
	if p.Protocol == "" {
		p.Protocol = "tcp"
	}
	if p.Protocol != "tcp" && p.Protocol != "udp" {
		return fmt.Errorf("port allocation: invalid protocol %q (valid: tcp, udp)", p.Protocol)
	}
	return nil
}

// String returns a human-readable representation of the port allocation.
// Format: "service:containerPort → hostPort/protocol"
func (p *PortAllocation) String() string {
	proto := p.Protocol
	if proto == "" {
		proto = "tcp"
	}
	return fmt.Sprintf("%s:%d → %d/%s", p.ServiceName, p.ContainerPort, p.HostPort, proto)
}

// ValidatePortAllocations checks a slice of PortAllocations for individual
// validity and cross-allocation host port uniqueness (when non-zero).
func ValidatePortAllocations(allocations []PortAllocation) error {
	seen := make(map[string]string)

	for i := range allocations {
		if err := allocations[i].Validate(); err != nil {
			return err
		}
		if allocations[i].HostPort == 0 {
			continue
		}
		key := fmt.Sprintf("%d/%s", allocations[i].HostPort, allocations[i].Protocol)
		if existingService, exists := seen[key]; exists {
			return fmt.Errorf("port allocation: host port %s is used by both %q and %q",
				key, existingService, allocations[i].ServiceName)
		}
		seen[key] = allocations[i].ServiceName
	}
	return nil
}

// ContainerInfo holds runtime information about a Docker container.
// This data is fetched dynamically from the Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// ServiceName is the Docker Compose service name.
	ServiceName string `json:"serviceName,omitempty"`

	// Status is the Docker container status (e.g., "running", "exited").
	Status string `json:"status"`

	// Labels is the full set of Docker labels on the container, including
	// dockertree's own management labels (dockertree.* prefix).
	Labels map[string]string `json:"labels,omitempty"`
}

// PackageMetadata is the parsed contents of a package archive's
// metadata.json file (see internal/pkgarchive).
type PackageMetadata struct {
	PackageVersion    string            `json:"package_version"`
	DockertreeVersion string            `json:"dockertree_version"`
	CreatedAt         time.Time         `json:"created_at"`
	BranchName        string            `json:"branch_name"`
	ProjectName       string            `json:"project_name"`
	IncludeCode       bool              `json:"include_code"`
	Checksums         map[string]string `json:"checksums"`
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitNotSetUp indicates the project has no .dockertree/config.yml and
	// the command requires one.
	ExitNotSetUp ExitCode = 2

	// ExitRuntimeUnavailable indicates the container runtime or compose
	// tool is not installed or the daemon is unreachable.
	ExitRuntimeUnavailable ExitCode = 3

	// ExitNoFreePort indicates a host port could not be allocated without
	// conflicting with an existing allocation.
	ExitNoFreePort ExitCode = 4

	// ExitGitError indicates a Git operation (worktree/branch) failed.
	ExitGitError ExitCode = 5

	// ExitNotFound indicates the specified branch environment, package, or
	// file does not exist.
	ExitNotFound ExitCode = 6

	// ExitUserCancelled indicates the user cancelled an interactive prompt.
	ExitUserCancelled ExitCode = 7

	// ExitAlreadyExists indicates a create operation targeted a branch
	// environment that already exists.
	ExitAlreadyExists ExitCode = 8

	// ExitProtectedBranch indicates a destructive operation targeted a
	// protected branch (main, master, develop, production, staging).
	ExitProtectedBranch ExitCode = 9

	// ExitReservedName indicates an operation used a branch name that
	// collides with a reserved engine subcommand.
	ExitReservedName ExitCode = 10

	// ExitVolumeInUse indicates a volume operation targeted a volume
	// attached to a running container.
	ExitVolumeInUse ExitCode = 11

	// ExitChecksumMismatch indicates a package archive failed integrity
	// verification.
	ExitChecksumMismatch ExitCode = 12

	// ExitCorruptedWorktree indicates a worktree directory and its Git/VCS
	// entry disagree (one exists without the other).
	ExitCorruptedWorktree ExitCode = 13

	// ExitPermissionDenied indicates an external-process call failed due to
	// insufficient filesystem or runtime permissions.
	ExitPermissionDenied ExitCode = 14

	// ExitTimeout indicates an external-process call exceeded its bounded
	// timeout.
	ExitTimeout ExitCode = 15

	// ExitConflict indicates a runtime or VCS call reported a conflicting
	// concurrent operation.
	ExitConflict ExitCode = 16
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// Result is the structured {success, data|error, message?} shape every
// orchestrator-level operation returns, matching the engine's propagation
// policy: no exceptions across the public surface, only classified results.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo carries a classified error kind plus a human-readable message,
// per the error taxonomy in SPEC_FULL.md §7.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Ok builds a successful Result.
func Ok(data interface{}) Result {
	return Result{Success: true, Data: data}
}

// OkWithMessage builds a successful Result carrying an advisory message.
func OkWithMessage(data interface{}, message string) Result {
	return Result{Success: true, Data: data, Message: message}
}

// Err builds a failed Result with a classified error kind.
func Err(kind, message string) Result {
	return Result{Success: false, Error: &ErrorInfo{Kind: kind, Message: message}}
}
