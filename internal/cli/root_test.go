package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "github.com/goliatone/go-fixtures"
)

func setupDataDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"templates/people.json": `{
  "Address": {"street": "Castle Black", "city": "The Wall"},
  "User": {"name": "Jon", "address": {"@DATA:TEMPLATE@": "Address"}, "house": "@DATA:MAP::Houses[name=Stark].words@"}
}`,
		"maps/houses.yaml": "Houses:\n  - name: Stark\n    words: Winter is coming\n  - name: Lannister\n    words: Hear me roar\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeOutput(t *testing.T, out string) any {
	t.Helper()
	var value any
	require.NoError(t, json.Unmarshal([]byte(out), &value))
	return value
}

func TestResolveFromStdin(t *testing.T) {
	data := setupDataDir(t)

	out, _, err := run(t, `{"@DATA:TEMPLATE@": "User", "@OVERRIDES@": {"name": "Arya"}}`, "resolve", "--data", data)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"name":    "Arya",
		"address": map[string]any{"street": "Castle Black", "city": "The Wall"},
		"house":   "Winter is coming",
	}, decodeOutput(t, out))
}

func TestResolveFromFile(t *testing.T) {
	data := setupDataDir(t)
	payload := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(payload, []byte(`["@DATA:MAP::Houses[name=Lannister].words@"]`), 0o644))

	out, _, err := run(t, "", "resolve", payload, "--data", data, "--compact")
	require.NoError(t, err)
	assert.Equal(t, "[\"Hear me roar\"]\n", out)
}

func TestResolveStrictFailsOnMarkers(t *testing.T) {
	data := setupDataDir(t)

	out, _, err := run(t, `{"who": {"@DATA:TEMPLATE@": "Ghost"}}`, "resolve", "--data", data, "--strict")
	require.Error(t, err)
	assert.ErrorIs(t, err, fixtures.ErrUnresolved)
	assert.Contains(t, err.Error(), `template "Ghost" at who`)
	assert.Empty(t, out)
}

func TestResolveLeavesMarkersWithoutStrict(t *testing.T) {
	data := setupDataDir(t)

	out, stderr, err := run(t, `"@DATA:MAP::Houses[name=Tully].words@"`, "resolve", "--data", data, "--log-format", "json")
	require.NoError(t, err)
	assert.Equal(t, "@DATA:MAP::Houses[name=Tully].words@", decodeOutput(t, out))
	assert.Contains(t, stderr, "fixtures: unresolved reference")
}

func TestResolveRejectsInvalidPayload(t *testing.T) {
	_, _, err := run(t, `{not json`, "resolve", "--data", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode payload stdin")
}

func TestResolveWithCELMatcher(t *testing.T) {
	data := setupDataDir(t)

	out, _, err := run(t, `"@DATA:MAP::Houses[name=Stark].words@"`, "resolve", "--data", data, "--matcher", "cel")
	require.NoError(t, err)
	assert.Equal(t, "Winter is coming", decodeOutput(t, out))
}

func TestUnknownMatcher(t *testing.T) {
	_, _, err := run(t, `{}`, "resolve", "--data", t.TempDir(), "--matcher", "lua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown matcher "lua"`)
}

func TestLookupPrintsValue(t *testing.T) {
	data := setupDataDir(t)

	out, _, err := run(t, "", "lookup", "Houses[name=Stark]", "--data", data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Stark", "words": "Winter is coming"}, decodeOutput(t, out))
}

func TestLookupTrace(t *testing.T) {
	data := setupDataDir(t)

	out, _, err := run(t, "", "lookup", "Houses[name=Stark].words", "--data", data, "--trace")
	require.NoError(t, err)

	trace, err := fixtures.TraceFromJSON([]byte(out))
	require.NoError(t, err)
	assert.True(t, trace.Found)
	assert.Equal(t, "Winter is coming", trace.Value)
	require.Len(t, trace.Steps, 3)
	assert.Equal(t, "Houses", trace.Steps[0].Segment)
}

func TestLookupMissingPath(t *testing.T) {
	data := setupDataDir(t)

	_, _, err := run(t, "", "lookup", "Houses[name=Tully]", "--data", data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `path "Houses[name=Tully]" not found`)
}

func TestLookupInvalidPath(t *testing.T) {
	_, _, err := run(t, "", "lookup", "Houses[name=Stark", "--data", t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, fixtures.ErrInvalidPath)
}

func TestVersion(t *testing.T) {
	root := NewRootCommand()
	SetVersion(root, "1.2.3")
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "1.2.3\n", stdout.String())
}
