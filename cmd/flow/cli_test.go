package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/flow/pkg/core"
	"github.com/aretw0/flow/pkg/registry"
)

// setup isolates the registry in a temp dir and returns a workspace for graphs.
func setup(t *testing.T) string {
	t.Helper()
	t.Setenv(registry.EnvConfig, filepath.Join(t.TempDir(), "flow.toml"))
	return t.TempDir()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose, quiet, jsonOutput, yamlOutput = false, false, false, false
	graphFlag, initName = "", ""
	cleanDryRun = false
	watchDebounce = 100 * time.Millisecond

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func executeJSON[T any](t *testing.T, args ...string) T {
	t.Helper()
	out, err := execute(t, append(args, "--json")...)
	require.NoError(t, err, out)

	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestInitAddStatus(t *testing.T) {
	ws := setup(t)
	dir := filepath.Join(ws, "notes")

	initRes := executeJSON[initResult](t, "init", dir)
	assert.Equal(t, "notes", initRes.Name)
	assert.True(t, initRes.Active)

	first := executeJSON[addResult](t, "add", "hello", "world")
	assert.Equal(t, "notes", first.Graph)
	assert.Equal(t, "hello world", first.Content)
	executeJSON[addResult](t, "add", "again")

	data, err := os.ReadFile(filepath.Join(initRes.Path, filepath.FromSlash(first.ID)))
	require.NoError(t, err)
	assert.Equal(t, "- hello world\n- again", string(data))

	state := executeJSON[map[string]any](t, "status")
	assert.Equal(t, "notes", state["name"])
	assert.Equal(t, []any{first.ID}, state["documents"])
}

func TestInitRefusesExistingGraph(t *testing.T) {
	ws := setup(t)

	_, err := execute(t, "init", ws, "-q")
	require.NoError(t, err)

	_, err = execute(t, "init", ws)
	assert.ErrorIs(t, err, core.ErrAlreadyExists)
}

func TestInitRefusesDuplicateName(t *testing.T) {
	ws := setup(t)

	_, err := execute(t, "init", filepath.Join(ws, "a"), "--name", "shared")
	require.NoError(t, err)

	_, err = execute(t, "init", filepath.Join(ws, "b"), "--name", "shared")
	assert.ErrorContains(t, err, "already registered")
	assert.NoDirExists(t, filepath.Join(ws, "b", ".flow"))
}

func TestOpen(t *testing.T) {
	ws := setup(t)
	executeJSON[initResult](t, "init", filepath.Join(ws, "work"))
	executeJSON[initResult](t, "init", filepath.Join(ws, "home"))

	res := executeJSON[openResult](t, "open", "work")
	assert.Equal(t, "work", res.Name)
	assert.False(t, res.Registered)

	list := executeJSON[listResult](t, "list")
	assert.Equal(t, "work", list.Active)
	require.Len(t, list.Graphs, 2)
	assert.Equal(t, "home", list.Graphs[0].Name)

	t.Run("Unregistered Path", func(t *testing.T) {
		reg, err := registry.Load(os.Getenv(registry.EnvConfig))
		require.NoError(t, err)
		entry, ok := reg.Lookup("home")
		require.True(t, ok)
		require.NoError(t, reg.Remove("home"))
		require.NoError(t, reg.Save())

		res := executeJSON[openResult](t, "open", entry.Path)
		assert.Equal(t, "home", res.Name)
		assert.True(t, res.Registered)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := execute(t, "open", filepath.Join(ws, "nowhere"))
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestAddTargetsGraphFlag(t *testing.T) {
	ws := setup(t)
	executeJSON[initResult](t, "init", filepath.Join(ws, "a"))
	executeJSON[initResult](t, "init", filepath.Join(ws, "b"))

	res := executeJSON[addResult](t, "add", "for a", "--graph", "a")
	assert.Equal(t, "a", res.Graph)
	assert.FileExists(t, filepath.Join(ws, "a", filepath.FromSlash(res.ID)))
	assert.NoFileExists(t, filepath.Join(ws, "b", filepath.FromSlash(res.ID)))

	_, err := execute(t, "add", "x", "--graph", "missing")
	assert.ErrorIs(t, err, registry.ErrGraphNotFound)
}

func TestAddWithoutGraph(t *testing.T) {
	setup(t)
	_, err := execute(t, "add", "orphan")
	assert.ErrorIs(t, err, errNoGraph)
}

func TestClean(t *testing.T) {
	ws := setup(t)
	executeJSON[initResult](t, "init", filepath.Join(ws, "keep"))
	executeJSON[initResult](t, "init", filepath.Join(ws, "gone"))
	require.NoError(t, os.RemoveAll(filepath.Join(ws, "gone")))

	dry := executeJSON[cleanResult](t, "clean", "--dry-run")
	assert.True(t, dry.DryRun)
	require.Len(t, dry.Removed, 1)
	assert.Equal(t, "gone", dry.Removed[0].Name)
	assert.Equal(t, 1, dry.Remaining)
	assert.Equal(t, "keep", dry.Active)
	list := executeJSON[listResult](t, "list")
	assert.Len(t, list.Graphs, 2)
	assert.Equal(t, "gone", list.Active)

	res := executeJSON[cleanResult](t, "clean")
	require.Len(t, res.Removed, 1)
	assert.Equal(t, 1, res.Remaining)
	assert.Equal(t, "keep", res.Active)

	again := executeJSON[cleanResult](t, "clean")
	assert.Empty(t, again.Removed)
}

func TestReindexCommand(t *testing.T) {
	ws := setup(t)
	initRes := executeJSON[initResult](t, "init", ws)
	require.NoError(t, os.WriteFile(filepath.Join(initRes.Path, "journal", "2020-02-02.md"), []byte("- old"), 0644))

	res := executeJSON[reindexResult](t, "reindex")
	assert.Equal(t, []string{"journal/2020-02-02.md"}, res.Changed)

	res = executeJSON[reindexResult](t, "reindex")
	assert.Empty(t, res.Changed)
}

func TestYAMLOutput(t *testing.T) {
	ws := setup(t)
	executeJSON[initResult](t, "init", filepath.Join(ws, "notes"))

	out, err := execute(t, "list", "--yaml")
	require.NoError(t, err)

	var res listResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Equal(t, "notes", res.Active)
}

func TestTextOutput(t *testing.T) {
	ws := setup(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No graphs registered")

	out, err = execute(t, "init", filepath.Join(ws, "notes"))
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized graph")

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "notes")

	_, err = execute(t, "list", "--json", "--yaml")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	res := executeJSON[versionResult](t, "version")
	assert.Equal(t, core.Version, res.Version)
}
