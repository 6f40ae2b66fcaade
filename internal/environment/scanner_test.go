package environment

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanner_IsPortAvailable(t *testing.T) {
	scanner := NewScanner()

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	assert.False(t, scanner.IsPortAvailable(port, "tcp"))
}

func TestScanner_FindAvailablePort(t *testing.T) {
	scanner := NewScanner()

	port, err := scanner.FindAvailablePort(40000, 40010, "tcp")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, port, 40000)
	assert.LessOrEqual(t, port, 40010)
}

func TestScanner_FindAvailablePort_NoneFree(t *testing.T) {
	scanner := NewScanner()

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	_, err = scanner.FindAvailablePort(port, port, "tcp")
	assert.Error(t, err)
}

func TestScanner_UnknownProtocol(t *testing.T) {
	scanner := NewScanner()
	assert.False(t, scanner.IsPortAvailable(40020, "sctp"))
}
