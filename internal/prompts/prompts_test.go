package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/opencode-helix/internal/config"
	"github.com/wk-j/opencode-helix/internal/logging"
)

func names(list []Prompt) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.Name)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBuiltins(t *testing.T) {
	got := Builtins()
	assert.Equal(t, []string{"explain", "review", "fix", "implement", "tests", "docs", "refactor", "optimize"}, names(got))

	for _, p := range got {
		assert.Equal(t, SourceBuiltin, p.Source)
		assert.Contains(t, p.Template, "@this", p.Name)
		assert.NotEmpty(t, p.Description, p.Name)
	}

	got[0].Template = "mutated"
	assert.Equal(t, "Explain how this code works: @this", Builtins()[0].Template)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "security.md", "---\ndescription: Security review\n---\nLook for security issues in @this\n")
	writeFile(t, dir, "b-named.md", "---\nname: perf\n---\nProfile @buffer")
	writeFile(t, dir, "plain.MD", "Summarize @diff\n")
	writeFile(t, dir, "empty.md", "---\nname: empty\n---\n\n")
	writeFile(t, dir, "broken.md", "---\nname: [oops\n---\nbody")
	writeFile(t, dir, "spaced.md", "---\nname: two words\n---\nbody")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.md"), 0o755))

	got, err := LoadDir(dir, logging.NewDiscard())
	require.NoError(t, err)

	assert.Equal(t, []string{"perf", "plain", "security"}, names(got))
	assert.Equal(t, "Profile @buffer", got[0].Template)
	assert.Equal(t, "Summarize @diff", got[1].Template)
	assert.Equal(t, "Security review", got[2].Description)
	assert.Equal(t, SourceFile, got[2].Source)
	assert.Equal(t, filepath.Join(dir, "security.md"), got[2].Path)
}

func TestLoadDir_Missing(t *testing.T) {
	got, err := LoadDir(filepath.Join(t.TempDir(), "absent"), nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = LoadDir("", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMerge(t *testing.T) {
	base := []Prompt{{Name: "a", Template: "1"}, {Name: "b", Template: "2"}}
	over := []Prompt{{Name: "b", Template: "override"}, {Name: "c", Template: "3"}}

	got := Merge(base, over)
	assert.Equal(t, []Prompt{
		{Name: "a", Template: "1"},
		{Name: "b", Template: "override"},
		{Name: "c", Template: "3"},
	}, got)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "review.md", "---\ndescription: Strict review\n---\nBe strict about @this")

	cfg := config.Default()
	cfg.PromptsDir = dir
	cfg.Prompts = []config.Prompt{
		{Name: "review", Description: "Inline review", Prompt: "inline @this"},
		{Name: "security", Prompt: "Audit @selection"},
	}

	got, err := Load(cfg, logging.NewDiscard())
	require.NoError(t, err)

	review, ok := Find(got, "review")
	require.True(t, ok)
	assert.Equal(t, "Be strict about @this", review.Template)
	assert.Equal(t, SourceFile, review.Source)

	security, ok := Find(got, "security")
	require.True(t, ok)
	assert.Equal(t, SourceConfig, security.Source)

	assert.Equal(t, "review", got[1].Name, "overrides keep the built-in position")
	assert.Equal(t, "security", got[len(got)-1].Name, "new names are appended")
}

func TestFind(t *testing.T) {
	_, ok := Find(Builtins(), "nope")
	assert.False(t, ok)

	p, ok := Find(Builtins(), "fix")
	assert.True(t, ok)
	assert.Equal(t, "Fix code issues", p.Description)
}
