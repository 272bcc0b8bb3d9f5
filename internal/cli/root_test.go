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
	assert.Equal(t, "cycler", cmd.Use)
	assert.Contains(t, cmd.Long, "frame markers")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "expected", "reconcile", "resize", "offset", "markers", "curves", "run", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestDocumentCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"expected", "reconcile", "resize", "offset", "markers", "curves", "run"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			db := sub.Flags().Lookup("db")
			require.NotNil(t, db)
			assert.Equal(t, "", db.DefValue)
		})
	}

	for _, name := range []string{"reconcile", "resize", "offset", "markers", "run"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		write := sub.Flags().Lookup("write")
		require.NotNil(t, write, "%s should have --write", name)
		assert.Equal(t, "w", write.Shorthand)
	}
}

func TestRootInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "xml", "validate", "doc.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "cycler.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  path: from-config.db\nlog:\n  level: warn\n"), 0o644))

	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "validate", filepath.Join("testdata", "hips.yaml")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "is valid")
}

func TestRootConfigMissing(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.yaml"), "validate", "doc.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseChannel(t *testing.T) {
	key, err := parseChannel("hips:location:z")
	require.NoError(t, err)
	assert.Equal(t, "hips/LOCATION/Z", key.String())

	for _, bad := range []string{"hips", "hips:LOCATION", ":LOCATION:Z", "hips:WIGGLE:Z", "hips:LOCATION:Q"} {
		_, err := parseChannel(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseKeyframe(t *testing.T) {
	id, err := parseKeyframe("foot.L:LOCATION:X#2")
	require.NoError(t, err)
	assert.Equal(t, "foot.L/LOCATION/X#2", id.String())

	for _, bad := range []string{"foot.L:LOCATION:X", "foot.L:LOCATION:X#", "foot.L:LOCATION:X#-1", "foot.L:LOCATION#0"} {
		_, err := parseKeyframe(bad)
		assert.Error(t, err, bad)
	}
}
