package environment

import (
	"github.com/catalpainternational/dockertree/internal/pathutil"
)

// Deployment holds the push destination a branch's worktree was last pushed
// to (or is configured to push to). It unifies the scoped env file's legacy
// PUSH_* keys and their DROPLET_* counterparts: on read, PUSH_* wins when
// both are present; on write, only PUSH_* is emitted.
type Deployment struct {
	SCPTarget string
	Domain    string
	IP        string
}

// LoadDeployment reads a worktree's scoped env file and extracts whichever
// of PUSH_*/DROPLET_* deployment keys are present.
func LoadDeployment(worktreePath string) (Deployment, error) {
	vars, err := pathutil.LoadEnvFile(pathutil.EnvDockertreeFilePath(worktreePath))
	if err != nil {
		return Deployment{}, err
	}
	return Deployment{
		SCPTarget: firstNonEmpty(vars["PUSH_SCP_TARGET"], vars["DROPLET_SCP_TARGET"]),
		Domain:    firstNonEmpty(vars["PUSH_DOMAIN"], vars["DROPLET_DOMAIN"]),
		IP:        firstNonEmpty(vars["PUSH_IP"], vars["DROPLET_IP"]),
	}, nil
}

// SaveDeployment records d into the worktree's scoped env file under the
// PUSH_* keys, preserving every other variable already in the file.
func SaveDeployment(worktreePath string, d Deployment) error {
	path := pathutil.EnvDockertreeFilePath(worktreePath)
	vars, err := pathutil.LoadEnvFile(path)
	if err != nil {
		return err
	}

	overrides := map[string]string{"PUSH_SCP_TARGET": d.SCPTarget}
	if d.Domain != "" {
		overrides["PUSH_DOMAIN"] = d.Domain
	}
	if d.IP != "" {
		overrides["PUSH_IP"] = d.IP
	}

	return pathutil.WriteEnvFile(path, pathutil.MergeEnv(vars, overrides))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
