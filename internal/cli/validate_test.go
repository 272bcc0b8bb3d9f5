package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", filepath.Join("testdata", "hips.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "hips.yaml is valid")
	assert.Contains(t, out, "100 frames at 24 fps, 2 marker(s)")
	assert.Contains(t, out, "1 control(s), 1 channel(s), 1 keyframe(s)")
}

func TestValidate_JSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "json", filepath.Join("testdata", "hips.yaml"))
	require.NoError(t, err)

	result := decodeData[ValidationResult](t, out)
	assert.True(t, result.Valid)
	assert.Equal(t, 100, result.Length)
	assert.Equal(t, 24, result.FrameRate)
	assert.Equal(t, 1, result.Keyframes)
	assert.Empty(t, result.Unresolved)
}

func TestValidate_UnresolvedMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stray.yaml")
	doc := `
timeline: {length: 100, frame_rate: 24, markers: [{name: contact, length: 100}]}
controls:
  - name: hips
    channels:
      - type: LOCATION
        axis: Z
        keyframes: [{marker: lift, offset: 0}]
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, NewValidateCommand, "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: keyframe hips/LOCATION/Z#0 references a missing marker")
}

func TestValidate_Invalid(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
	assert.Contains(t, out, `unknown channel type "WIGGLE"`)
}

func TestValidate_CUEPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.cue")
	doc := "timeline: {\n\tlength: 100\n\tframe_rate: 24\n}\ncontrols: [{\n\tname: \"hips\"\n\tmirorred: true\n}]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	out, err := execute(t, NewValidateCommand, "json", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `"code": "E005"`)
	assert.Contains(t, out, `"line":`)
}

func TestValidate_NotFound(t *testing.T) {
	out, err := execute(t, NewValidateCommand, "text", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestValidate_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.toml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o644))

	out, err := execute(t, NewValidateCommand, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E003]")
}

func TestValidate_MissingArgs(t *testing.T) {
	_, err := execute(t, NewValidateCommand, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
