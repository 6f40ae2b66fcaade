package runtime

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/catalpainternational/dockertree/internal/model"
)

// FailureKind classifies why a runtime invocation failed, so callers can
// react (retry, surface a specific message, map to an exit code) without
// parsing stderr text themselves.
type FailureKind string

const (
	FailureNotInstalled     FailureKind = "not_installed"
	FailureDaemonDown       FailureKind = "daemon_down"
	FailureNotFound         FailureKind = "not_found"
	FailurePermissionDenied FailureKind = "permission_denied"
	FailureConflict         FailureKind = "conflict"
	FailureOther            FailureKind = "other"
)

// Failure wraps a failed command invocation with its classification and
// captured streams, so logs/diagnostics can show stdout/stderr without the
// caller having needed to capture them itself.
type Failure struct {
	Kind   FailureKind
	Stdout string
	Stderr string
	Err    error
}

func (f *Failure) Error() string {
	if strings.TrimSpace(f.Stderr) != "" {
		return f.Stderr
	}
	if f.Err != nil {
		return f.Err.Error()
	}
	return string(f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }

// classify inspects a command execution error and its stderr to assign a
// FailureKind.
func classify(err error, stderr string) FailureKind {
	if err == nil {
		return ""
	}
	lower := strings.ToLower(stderr)
	switch {
	case isExecNotFound(err):
		return FailureNotInstalled
	case strings.Contains(lower, "cannot connect to the docker daemon"):
		return FailureDaemonDown
	case strings.Contains(lower, "permission denied"):
		return FailurePermissionDenied
	case strings.Contains(lower, "no such"):
		return FailureNotFound
	case strings.Contains(lower, "already in use") || strings.Contains(lower, "conflict"):
		return FailureConflict
	default:
		return FailureOther
	}
}

func isExecNotFound(err error) bool {
	var execErr *exec.Error
	if ok := asExecError(err, &execErr); ok {
		return execErr.Err == exec.ErrNotFound
	}
	return false
}

func asExecError(err error, target **exec.Error) bool {
	for err != nil {
		if e, ok := err.(*exec.Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// ComposeRunner shells out to `docker compose` (or the legacy
// `docker-compose` binary, when the integrated plugin is unavailable) to run
// orchestration commands. This mirrors the reference implementation's
// approach of invoking the compose CLI directly rather than reimplementing
// its merge/profile semantics.
type ComposeRunner struct {
	baseCmd []string
}

// NewComposeRunner detects which compose invocation is available and
// returns a runner bound to it. Detection prefers the integrated `docker
// compose` plugin, falling back to the legacy `docker-compose` binary, and
// finally defaulting to the legacy name if neither responds (matching the
// detection order of the system this component was modeled on).
func NewComposeRunner(ctx context.Context) *ComposeRunner {
	if err := exec.CommandContext(ctx, "docker", "compose", "version").Run(); err == nil {
		return &ComposeRunner{baseCmd: []string{"docker", "compose"}}
	}
	if err := exec.CommandContext(ctx, "docker-compose", "version").Run(); err == nil {
		return &ComposeRunner{baseCmd: []string{"docker-compose"}}
	}
	return &ComposeRunner{baseCmd: []string{"docker-compose"}}
}

// RunOptions configures a single compose invocation.
type RunOptions struct {
	// WorkingDir is the directory compose commands execute from; it is
	// also where a project-level .env file is auto-discovered.
	WorkingDir string

	// ComposeFiles are passed in order as repeated -f flags. Compose merges
	// them left to right, so override files must come after the base file.
	ComposeFiles []string

	// EnvFile, if set, is loaded with --env-file after any auto-discovered
	// WorkingDir/.env, so it takes precedence over the working directory's
	// default env file.
	EnvFile string

	// ProjectName sets -p / COMPOSE_PROJECT_NAME, pinning the Docker
	// Compose project namespace independent of the working directory name.
	ProjectName string

	// Profile, if set, is passed as --profile.
	Profile string
}

// Run executes `docker compose <options> <args...>` and returns a
// classified *Failure on non-zero exit.
func (r *ComposeRunner) Run(ctx context.Context, opts RunOptions, args ...string) (stdout string, err error) {
	cmd := append([]string{}, r.baseCmd...)

	workingDir := opts.WorkingDir
	if workingDir == "" {
		workingDir = "."
	}
	absWorkingDir, absErr := filepath.Abs(workingDir)
	if absErr == nil {
		workingDir = absWorkingDir
	}

	// Load the working directory's own .env first, so an explicit EnvFile
	// can override it.
	mainEnvFile := filepath.Join(workingDir, ".env")
	if _, statErr := os.Stat(mainEnvFile); statErr == nil {
		cmd = append(cmd, "--env-file", mainEnvFile)
	}
	if opts.EnvFile != "" {
		if _, statErr := os.Stat(opts.EnvFile); statErr == nil {
			cmd = append(cmd, "--env-file", opts.EnvFile)
		}
	}

	if opts.ProjectName != "" {
		cmd = append(cmd, "-p", opts.ProjectName)
	}
	for _, f := range opts.ComposeFiles {
		cmd = append(cmd, "-f", f)
	}
	if opts.Profile != "" {
		cmd = append(cmd, "--profile", opts.Profile)
	}
	cmd = append(cmd, args...)

	execCmd := exec.CommandContext(ctx, cmd[0], cmd[1:]...)
	execCmd.Dir = workingDir
	execCmd.Env = composeEnv(workingDir, opts.ProjectName)

	var stdoutBuf, stderrBuf strings.Builder
	execCmd.Stdout = &stdoutBuf
	execCmd.Stderr = &stderrBuf

	runErr := execCmd.Run()
	if runErr != nil {
		return stdoutBuf.String(), &Failure{
			Kind:   classify(runErr, stderrBuf.String()),
			Stdout: stdoutBuf.String(),
			Stderr: stderrBuf.String(),
			Err:    runErr,
		}
	}

	return stdoutBuf.String(), nil
}

// composeEnv builds the environment passed to a compose subprocess: the
// parent process's environment plus PROJECT_ROOT/COMPOSE_PROJECT_ROOT/PWD
// pinned to workingDir, and COMPOSE_PROJECT_NAME when projectName is set.
// This lets compose files reference ${PROJECT_ROOT} for bind mounts
// regardless of the caller's actual working directory.
func composeEnv(workingDir, projectName string) []string {
	env := os.Environ()
	env = append(env,
		"PROJECT_ROOT="+workingDir,
		"COMPOSE_PROJECT_ROOT="+workingDir,
		"PWD="+workingDir,
	)
	if projectName != "" {
		env = append(env, "COMPOSE_PROJECT_NAME="+projectName)
	}
	return env
}

// Up runs `compose up -d`.
func (r *ComposeRunner) Up(ctx context.Context, opts RunOptions) error {
	_, err := r.Run(ctx, opts, "up", "-d")
	return err
}

// Down runs `compose down`.
func (r *ComposeRunner) Down(ctx context.Context, opts RunOptions) error {
	_, err := r.Run(ctx, opts, "down")
	return err
}

// ExitCodeFor maps a FailureKind to the CLI exit code used when the failure
// propagates out of an orchestrator operation.
func ExitCodeFor(kind FailureKind) model.ExitCode {
	switch kind {
	case FailureNotInstalled, FailureDaemonDown:
		return model.ExitRuntimeUnavailable
	case FailureNotFound:
		return model.ExitNotFound
	case FailurePermissionDenied:
		return model.ExitPermissionDenied
	case FailureConflict:
		return model.ExitConflict
	default:
		return model.ExitGeneralError
	}
}
