package runtime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/catalpainternational/dockertree/internal/model"
)

// Label key constants persist branch-environment metadata on containers.
// Labels are the sole persistence mechanism for a branch environment's
// identity — there is no external state file (spec §8 "no database, no
// state file — rebuild everything from Docker + Git").
const (
	LabelPrefix = "dockertree."

	// LabelManagedBy identifies containers managed by this tool.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelBranch stores the Git branch this container's environment belongs to.
	LabelBranch = LabelPrefix + "branch"

	// LabelWorktreePath stores the absolute path to the Git worktree checkout.
	LabelWorktreePath = LabelPrefix + "worktree-path"

	// LabelProjectName stores the sanitized project name, used to reconstruct
	// compose/volume/container names without re-reading config.yml.
	LabelProjectName = LabelPrefix + "project-name"

	// LabelDomain stores the branch environment's routable hostname.
	LabelDomain = LabelPrefix + "domain"

	// LabelOriginalPortPrefix prefixes per-port allocation labels, e.g.
	// "dockertree.original-port.3000" = "58000".
	LabelOriginalPortPrefix = LabelPrefix + "original-port."

	// LabelCreatedAt stores the RFC3339 creation timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the label value identifying containers this tool created.
const ManagedByValue = "dockertree"

// BuildLabels constructs the Docker label set applied to every container
// dockertree starts for a branch environment, sufficient to reconstruct a
// model.BranchEnvironment from container inspection alone.
func BuildLabels(projectName string, env *model.BranchEnvironment) map[string]string {
	labels := map[string]string{
		LabelManagedBy:    ManagedByValue,
		LabelBranch:       env.Branch,
		LabelWorktreePath: env.WorktreePath,
		LabelProjectName:  projectName,
		LabelDomain:       env.Domain,
		LabelCreatedAt:    env.CreatedAt.UTC().Format(time.RFC3339),
	}

	for _, pa := range env.PortAllocations {
		labels[BuildPortLabel(pa.ContainerPort)] = strconv.Itoa(pa.HostPort)
	}

	return labels
}

// ParseLabels reconstructs the static (non-runtime) fields of a
// model.BranchEnvironment from a container's Docker labels. Status and
// Containers are not set — they are determined from live container state
// by the caller.
func ParseLabels(labels map[string]string) (*model.BranchEnvironment, string, error) {
	required := []string{LabelManagedBy, LabelBranch, LabelWorktreePath, LabelProjectName, LabelCreatedAt}

	var missing []string
	for _, key := range required {
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, "", fmt.Errorf("missing required labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return nil, "", fmt.Errorf("label %s has unexpected value %q", LabelManagedBy, labels[LabelManagedBy])
	}

	createdAt, err := time.Parse(time.RFC3339, labels[LabelCreatedAt])
	if err != nil {
		return nil, "", fmt.Errorf("invalid label %s: %w", LabelCreatedAt, err)
	}

	ports, err := ParsePortLabels(labels)
	if err != nil {
		return nil, "", fmt.Errorf("parsing port labels: %w", err)
	}

	env := &model.BranchEnvironment{
		Branch:          labels[LabelBranch],
		WorktreePath:    labels[LabelWorktreePath],
		Domain:          labels[LabelDomain],
		PortAllocations: ports,
		CreatedAt:       createdAt,
	}

	return env, labels[LabelProjectName], nil
}

// BuildPortLabel generates the label key for a container port's allocation.
func BuildPortLabel(containerPort int) string {
	return fmt.Sprintf("%s%d", LabelOriginalPortPrefix, containerPort)
}

// ParsePortLabels extracts port allocations from a label map. Returns an
// empty (non-nil) slice when no port labels are present.
func ParsePortLabels(labels map[string]string) ([]model.PortAllocation, error) {
	allocations := make([]model.PortAllocation, 0, 4)

	for key, value := range labels {
		if !strings.HasPrefix(key, LabelOriginalPortPrefix) {
			continue
		}

		portStr := strings.TrimPrefix(key, LabelOriginalPortPrefix)
		containerPort, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid container port in label key %q: %w", key, err)
		}

		hostPort, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid host port in label %q=%q: %w", key, value, err)
		}

		allocations = append(allocations, model.PortAllocation{
			ContainerPort: containerPort,
			HostPort:      hostPort,
			Protocol:      "tcp",
		})
	}

	return allocations, nil
}

// FilterLabels returns the Docker label filter selecting containers managed
// by this tool.
func FilterLabels() map[string]string {
	return map[string]string{LabelManagedBy: ManagedByValue}
}
