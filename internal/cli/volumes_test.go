package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catalpainternational/dockertree/internal/model"
)

func TestBranchVolumeNames_OneEntryPerKnownType(t *testing.T) {
	volumes := branchVolumeNames("demo", "feature-auth")
	assert.Len(t, volumes, len(model.KnownVolumeTypes))
	for _, volType := range model.KnownVolumeTypes {
		name, ok := volumes[string(volType)]
		assert.True(t, ok)
		assert.Contains(t, name, "demo")
		assert.Contains(t, name, "feature-auth")
	}
}
