package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCreateCommand_RegistersNoStartFlag(t *testing.T) {
	cmd := NewCreateCommand()
	flag := cmd.Flags().Lookup("no-start")
	assert.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestNewCreateCommand_RequiresExactlyOneArg(t *testing.T) {
	cmd := NewCreateCommand()
	assert.Error(t, cmd.Args(cmd, []string{}))
	assert.Error(t, cmd.Args(cmd, []string{"a", "b"}))
	assert.NoError(t, cmd.Args(cmd, []string{"feature-auth"}))
}
