package serverimport

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/catalpainternational/dockertree/internal/model"
)

func TestPerBranchVolumeNames_OneEntryPerKnownType(t *testing.T) {
	volumes := perBranchVolumeNames("demo", "feature-x")

	assert.Len(t, volumes, len(model.KnownVolumeTypes))
	for _, volType := range model.KnownVolumeTypes {
		name, ok := volumes[string(volType)]
		assert.True(t, ok, "expected an entry for %s", volType)
		assert.Contains(t, name, "demo")
		assert.Contains(t, name, "feature-x")
		assert.Contains(t, name, string(volType))
	}
}
