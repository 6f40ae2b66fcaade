package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScpDestPath_AppendsSlashToBareDirectory(t *testing.T) {
	assert.Equal(t, "deploy@host:/srv/packages/", scpDestPath("deploy@host:/srv/packages"))
}

func TestScpDestPath_LeavesTrailingSlashAlone(t *testing.T) {
	assert.Equal(t, "deploy@host:/srv/packages/", scpDestPath("deploy@host:/srv/packages/"))
}

func TestScpDestPath_LeavesFileTargetAlone(t *testing.T) {
	assert.Equal(t, "deploy@host:/srv/packages/app.tar.gz", scpDestPath("deploy@host:/srv/packages/app.tar.gz"))
}

func TestScpDestPath_Empty(t *testing.T) {
	assert.Equal(t, "", scpDestPath(""))
}
