package cmd

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoot(stdout io.Writer) *RootCommand {
	rc := NewRootCommand()
	rc.stdout = stdout
	rc.stderr = io.Discard
	return rc
}

func TestExecuteVersion(t *testing.T) {
	origVersion, origGOOS := runtimeVersion, runtimeGOOS
	runtimeVersion = func() string { return "go1.25.0" }
	runtimeGOOS = func() string { return "linux" }
	defer func() { runtimeVersion, runtimeGOOS = origVersion, origGOOS }()

	var stdout bytes.Buffer
	require.NoError(t, newTestRoot(&stdout).Execute([]string{"version"}))
	assert.Contains(t, stdout.String(), "(go1.25.0/linux)")
}

func TestExecuteHelpListsCommands(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, newTestRoot(&stdout).Execute(nil))

	for _, name := range []string{"doctor", "record", "version"} {
		assert.Contains(t, stdout.String(), name)
	}
}

func TestExecuteHelpShowsGlobalFlags(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, newTestRoot(&stdout).Execute([]string{"--help"}))

	assert.Contains(t, stdout.String(), "--log-format")
	assert.Contains(t, stdout.String(), "actioncap.yaml")
}

func TestExecuteSubcommandHelp(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, newTestRoot(&stdout).Execute([]string{"record", "--help"}))

	assert.Contains(t, stdout.String(), "Usage: actioncap record [flags]")
	assert.Contains(t, stdout.String(), "--flush-on-exit")
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	err := newTestRoot(&stdout).Execute([]string{"replay"})
	require.Error(t, err)
	assert.Contains(t, stdout.String(), "Commands:")
}

func TestExecuteGlobalFlagsBeforeSubcommand(t *testing.T) {
	t.Chdir(t.TempDir())

	var stdout bytes.Buffer
	rc := newTestRoot(&stdout)
	err := rc.Execute([]string{"--log-level", "debug", "--log-format", "json", "record", "--plan-only", "--source", "synthetic", "--rect", "0,0,800,600"})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "capture.source: synthetic")
	assert.Contains(t, stdout.String(), "capture.target: rect:0,0,800,600")
	assert.Contains(t, stdout.String(), "logging.level: debug")
	require.NotNil(t, rc.appCtx)
	assert.Equal(t, "json", rc.appCtx.Config.Logging.Format)
}

func TestExecuteRejectsBadLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())

	err := newTestRoot(io.Discard).Execute([]string{"--log-level", "chatty", "doctor"})
	assert.Error(t, err)
}
