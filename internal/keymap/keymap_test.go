package keymap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/opencode-helix/internal/errors"
)

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, toml.Unmarshal(data, &doc))
	return doc
}

func lookup(t *testing.T, doc map[string]any, path ...string) map[string]any {
	t.Helper()
	cur := doc
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		require.True(t, ok, "missing table %q", key)
		cur = next
	}
	return cur
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		b    Binding
		want string
	}{
		{
			name: "defaults",
			b:    Binding{Args: []string{"ask"}},
			want: "opencode-helix --file %{buffer_name} --line %{cursor_line} --column %{cursor_column} --language %{language} ask",
		},
		{
			name: "binary with spaces is quoted",
			opts: Options{Binary: "/opt/my tools/opencode-helix"},
			b:    Binding{Args: []string{"select"}},
			want: "'/opt/my tools/opencode-helix' --file %{buffer_name} --line %{cursor_line} --column %{cursor_column} --language %{language} select",
		},
		{
			name: "theme and port",
			opts: Options{Theme: "crt", Port: 4096},
			b:    Binding{Args: []string{"prompt", "explain"}},
			want: "opencode-helix --file %{buffer_name} --line %{cursor_line} --column %{cursor_column} --language %{language} --theme crt --port 4096 prompt explain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.CommandLine(tt.b))
		})
	}
}

func TestSnippet(t *testing.T) {
	out, err := Snippet(Options{Prefix: "x"})
	require.NoError(t, err)

	doc := decode(t, out)
	for _, mode := range []string{"normal", "select"} {
		table := lookup(t, doc, "keys", mode, "space", "x")
		assert.Len(t, table, len(Bindings()))

		ask, ok := table["a"].([]any)
		require.True(t, ok)
		assert.Equal(t, []any{":sh " + Options{}.CommandLine(Bindings()[0]), ":redraw"}, ask)

		review, ok := table["r"].(string)
		require.True(t, ok)
		assert.Contains(t, review, "prompt review")
	}
}

func TestMerge_KeepsExistingSettings(t *testing.T) {
	existing := []byte(`theme = "onedark"

[editor]
line-number = "relative"

[keys.normal]
C-s = ":w"

[keys.normal.space.o]
z = ":echo kept"
a = ":echo replaced"
`)

	out, err := Merge(existing, Options{Modes: []string{"normal"}})
	require.NoError(t, err)

	doc := decode(t, out)
	assert.Equal(t, "onedark", doc["theme"])
	assert.Equal(t, "relative", lookup(t, doc, "editor")["line-number"])

	normal := lookup(t, doc, "keys", "normal")
	assert.Equal(t, ":w", normal["C-s"])

	table := lookup(t, doc, "keys", "normal", "space", "o")
	assert.Equal(t, ":echo kept", table["z"])
	assert.NotEqual(t, ":echo replaced", table["a"])
	assert.NotContains(t, lookup(t, doc, "keys"), "select")
}

func TestMerge_Empty(t *testing.T) {
	out, err := Merge(nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, lookup(t, decode(t, out), "keys", "normal", "space"), DefaultPrefix)
}

func TestMerge_Conflict(t *testing.T) {
	existing := []byte("[keys.normal]\nspace = \":buffer-picker\"\n")

	_, err := Merge(existing, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), "keys.normal.space")
}

func TestMerge_InvalidTOML(t *testing.T) {
	_, err := Merge([]byte("[keys\n"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing helix config")
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helix", "config.toml")

	require.NoError(t, Write(path, Options{}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lookup(t, decode(t, data), "keys", "select", "space", DefaultPrefix)

	require.NoError(t, os.Chmod(path, 0o600))
	require.NoError(t, Write(path, Options{Prefix: "p"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	space := lookup(t, decode(t, data), "keys", "normal", "space")
	assert.Contains(t, space, "o")
	assert.Contains(t, space, "p")
}

func TestWrite_ConflictLeavesConfigUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	original := "# my keys\n[keys.normal]\nspace = \":buffer-picker\"\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))

	err := Write(path, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
