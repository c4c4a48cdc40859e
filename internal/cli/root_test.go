package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "stockboard", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	paths := [][]string{
		{"serve"},
		{"watch"},
		{"items", "list"},
		{"items", "add"},
		{"items", "update"},
		{"items", "delete"},
	}

	for _, path := range paths {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	envFlag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, ".env", envFlag.DefValue)
}

func TestWatchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	watch, _, err := cmd.Find([]string{"watch"})
	require.NoError(t, err)

	queryFlag := watch.Flags().Lookup("query")
	require.NotNil(t, queryFlag)
	assert.Equal(t, "q", queryFlag.Shorthand)
	assert.Equal(t, "bar", watch.Flags().Lookup("chart-type").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "items", "list"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMissingExplicitEnvFile(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env"), "items", "list"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestEnvFileConfiguresClient(t *testing.T) {
	be := newBackend(t)
	envFile := filepath.Join(t.TempDir(), "client.env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_URL="+be.URL+"\nAPI_TOKEN=test-token\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("API_URL")
		os.Unsetenv("API_TOKEN")
	})

	out, err := execute(t, "--env-file", envFile, "items", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", nil)))
}
