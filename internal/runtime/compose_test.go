package runtime

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catalpainternational/dockertree/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		stderr   string
		expected FailureKind
	}{
		{"not installed", &exec.Error{Name: "docker-compose", Err: exec.ErrNotFound}, "", FailureNotInstalled},
		{"daemon down", errors.New("exit status 1"), "Cannot connect to the Docker daemon at unix:///var/run/docker.sock", FailureDaemonDown},
		{"permission denied", errors.New("exit status 1"), "permission denied while trying to connect", FailurePermissionDenied},
		{"not found", errors.New("exit status 1"), "no such service: web", FailureNotFound},
		{"conflict", errors.New("exit status 1"), "container name already in use", FailureConflict},
		{"other", errors.New("exit status 1"), "some unexpected output", FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(tt.err, tt.stderr))
		})
	}
}

func TestFailure_Error(t *testing.T) {
	f := &Failure{Kind: FailureOther, Stderr: "boom", Err: errors.New("exit 1")}
	assert.Equal(t, "boom", f.Error())

	f2 := &Failure{Kind: FailureOther, Err: errors.New("exit 1")}
	assert.Equal(t, "exit 1", f2.Error())
}

func TestComposeEnv(t *testing.T) {
	env := composeEnv("/srv/app/worktrees/feature-auth", "acme-feature-auth")
	assertContains(t, env, "PROJECT_ROOT=/srv/app/worktrees/feature-auth")
	assertContains(t, env, "COMPOSE_PROJECT_ROOT=/srv/app/worktrees/feature-auth")
	assertContains(t, env, "PWD=/srv/app/worktrees/feature-auth")
	assertContains(t, env, "COMPOSE_PROJECT_NAME=acme-feature-auth")
}

func TestComposeEnv_NoProjectName(t *testing.T) {
	env := composeEnv("/srv/app", "")
	for _, e := range env {
		assert.NotContains(t, e, "COMPOSE_PROJECT_NAME=")
	}
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, model.ExitRuntimeUnavailable, ExitCodeFor(FailureNotInstalled))
	assert.Equal(t, model.ExitRuntimeUnavailable, ExitCodeFor(FailureDaemonDown))
	assert.Equal(t, model.ExitNotFound, ExitCodeFor(FailureNotFound))
	assert.Equal(t, model.ExitPermissionDenied, ExitCodeFor(FailurePermissionDenied))
	assert.Equal(t, model.ExitConflict, ExitCodeFor(FailureConflict))
	assert.Equal(t, model.ExitGeneralError, ExitCodeFor(FailureOther))
}

func assertContains(t *testing.T, haystack []string, needle string) {
	t.Helper()
	for _, h := range haystack {
		if h == needle {
			return
		}
	}
	t.Fatalf("expected %v to contain %q", haystack, needle)
}
