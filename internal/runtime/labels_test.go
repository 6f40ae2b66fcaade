package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catalpainternational/dockertree/internal/model"
)

func TestBuildAndParseLabels(t *testing.T) {
	created := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	env := &model.BranchEnvironment{
		Branch:       "feature-auth",
		WorktreePath: "/srv/app/worktrees/feature-auth",
		Domain:       "acme-feature-auth.localhost",
		CreatedAt:    created,
		PortAllocations: []model.PortAllocation{
			{ServiceName: "web", ContainerPort: 8000, HostPort: 58000, Protocol: "tcp"},
		},
	}

	labels := BuildLabels("acme", env)
	assert.Equal(t, ManagedByValue, labels[LabelManagedBy])
	assert.Equal(t, "feature-auth", labels[LabelBranch])
	assert.Equal(t, "58000", labels[BuildPortLabel(8000)])

	parsed, projectName, err := ParseLabels(labels)
	require.NoError(t, err)
	assert.Equal(t, "acme", projectName)
	assert.Equal(t, "feature-auth", parsed.Branch)
	assert.Equal(t, created, parsed.CreatedAt)
	require.Len(t, parsed.PortAllocations, 1)
	assert.Equal(t, 58000, parsed.PortAllocations[0].HostPort)
}

func TestParseLabels_MissingRequired(t *testing.T) {
	_, _, err := ParseLabels(map[string]string{LabelManagedBy: ManagedByValue})
	assert.Error(t, err)
}

func TestParseLabels_WrongManagedBy(t *testing.T) {
	labels := map[string]string{
		LabelManagedBy:    "something-else",
		LabelBranch:       "main",
		LabelWorktreePath: "/x",
		LabelProjectName:  "acme",
		LabelCreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	_, _, err := ParseLabels(labels)
	assert.Error(t, err)
}

func TestFilterLabels(t *testing.T) {
	assert.Equal(t, map[string]string{LabelManagedBy: ManagedByValue}, FilterLabels())
}
