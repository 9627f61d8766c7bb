package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeymap_PrintsSnippet(t *testing.T) {
	out, _, err := execute(t, "keymap", "--prefix", "i", "--binary", "opencode-helix")
	require.NoError(t, err)

	var doc struct {
		Keys map[string]map[string]map[string]map[string]any `toml:"keys"`
	}
	require.NoError(t, toml.Unmarshal([]byte(out), &doc))

	bindings := doc.Keys["normal"]["space"]["i"]
	require.NotNil(t, bindings)
	assert.Contains(t, bindings["e"], "opencode-helix --file %{buffer_name}")
	assert.Contains(t, bindings["e"], "prompt explain")
}

func TestKeymap_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("theme = \"onedark\"\n"), 0o644))

	_, stderr, err := execute(t, "keymap", "--write", "--helix-config", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Updated "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "onedark")
	assert.Contains(t, string(data), "%{cursor_line}")
}

func TestKeymap_WriteConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[keys.normal]\nspace = \":noop\"\n"), 0o644))

	_, _, err := execute(t, "keymap", "--write", "--helix-config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keys.normal.space")
}
