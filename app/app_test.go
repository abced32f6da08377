package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := RootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	if stdin != "" {
		cmd.SetIn(strings.NewReader(stdin))
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestFormatsCommand(t *testing.T) {
	out, _, err := executeCommand(t, "", "formats")
	require.NoError(t, err)

	for _, want := range []string{"geojson", "wkt", "dd", "geohash", "image/png", "application/pdf"} {
		assert.Contains(t, out, want)
	}
}

func TestFormatsCommandMarkdown(t *testing.T) {
	out, _, err := executeCommand(t, "", "formats", "--markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "Format")
	assert.Contains(t, out, "geojson")
	assert.Contains(t, out, "|")
}

func TestDetectCommand(t *testing.T) {
	out, _, err := executeCommand(t, "", "detect", "POINT (-122.4194 37.7749)")
	require.NoError(t, err)
	require.Equal(t, "wkt\n", out)
}

func TestDetectCommandFromStdin(t *testing.T) {
	out, _, err := executeCommand(t, "9q8yyk8yu\n", "detect")
	require.NoError(t, err)
	require.Equal(t, "geohash\n", out)
}

func TestDetectCommandRejectsUnknownInput(t *testing.T) {
	_, _, err := executeCommand(t, "", "detect", "not a location")
	require.Error(t, err)
	require.Contains(t, err.Error(), "supported")
}

func TestDetectCommandRequiresInput(t *testing.T) {
	_, _, err := executeCommand(t, " \n", "detect")
	require.Error(t, err)
	require.Contains(t, err.Error(), "no location given")
}

func TestConvertCommand(t *testing.T) {
	out, errOut, err := executeCommand(t, "", "convert", "--to", "geojson", "POINT (-122.4194 37.7749)")
	require.NoError(t, err)
	require.Equal(t, `{"coordinates":[-122.4194,37.7749],"type":"Point"}`+"\n", out)
	require.Empty(t, errOut)
}

func TestConvertCommandWarningsGoToStderr(t *testing.T) {
	out, errOut, err := executeCommand(t, "", "convert", "--from", "dd", "--to", "geohash", "37.7749, -122.4194")
	require.NoError(t, err)

	require.Len(t, strings.TrimSpace(out), 9)
	require.Contains(t, errOut, "value_drift")
}

func TestConvertCommandUnsupportedTarget(t *testing.T) {
	_, _, err := executeCommand(t, "", "convert", "--to", "mgrs", "POINT (1 2)")
	require.Error(t, err)
	require.Contains(t, err.Error(), "mgrs")
}

func TestSchemaCommand(t *testing.T) {
	out, _, err := executeCommand(t, "", "schema")
	require.NoError(t, err)

	assert.Contains(t, out, "Schema UID: 0x")
	assert.Contains(t, out, "uint64 eventTimestamp")
	assert.Contains(t, out, "string memo")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, "Version:")
	require.Contains(t, out, "Go version:")
}

func TestVersionCommandJSON(t *testing.T) {
	out, _, err := executeCommand(t, "", "version", "--json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Contains(t, decoded, "go_version")
	require.Contains(t, decoded, "version")
}