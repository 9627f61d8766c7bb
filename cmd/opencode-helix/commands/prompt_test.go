package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wk-j/opencode-helix/internal/editor"
	"github.com/wk-j/opencode-helix/internal/errors"
)

func TestPrompt_NamedPromptIsExpandedAndSubmitted(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer(t, dir)

	_, stderr, err := execute(t, "--port", srv.portArg(), "--cwd", dir,
		"--file", "a.rs", "--line", "10", "prompt", "explain")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"tui.prompt.append:Explain how this code works: @a.rs L10",
		"tui.command.execute:prompt.submit",
	}, srv.published())
	assert.Contains(t, stderr, "Sent: Explain how this code works")
}

func TestPrompt_LiteralTextWithFlags(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer(t, dir)

	_, _, err := execute(t, "--port", srv.portArg(), "--cwd", dir,
		"prompt", "--clear", "--submit=false", "hello", "there")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"tui.command.execute:prompt.clear",
		"tui.prompt.append:hello there",
	}, srv.published())
}

func TestPrompt_MissingContextIsFatal(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer(t, dir)

	_, _, err := execute(t, "--port", srv.portArg(), "--cwd", dir, "prompt", "fix @selection")
	require.Error(t, err)

	assert.True(t, errors.Is(err, editor.ErrMissingContext))
	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, errors.ExitUser, exitErr.Code)
	assert.Empty(t, srv.published())
}

func TestPrompt_SelectionFileIsConsumed(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer(t, dir)

	sel := filepath.Join(dir, "selection.txt")
	require.NoError(t, os.WriteFile(sel, []byte("let x = 1;\n"), 0o600))

	_, _, err := execute(t, "--port", srv.portArg(), "--cwd", dir,
		"--file", "a.rs", "--selection-file", sel, "--selection-start", "4", "--selection-end", "3",
		"prompt", "--submit=false", "@selection")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"tui.prompt.append:@a.rs L3-L4\n```a.rs:3-4\nlet x = 1;\n```",
	}, srv.published())
	assert.NoFileExists(t, sel)
}

func TestPrompt_UnreachableServer(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer(t, dir)
	port := srv.portArg()
	srv.close()

	_, _, err := execute(t, "--port", port, "--cwd", dir, "prompt", "hello")
	require.Error(t, err)

	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, errors.ExitUser, exitErr.Code)
	assert.Contains(t, exitErr.Suggestion, "listening on that port")
}

func TestCommand_ExecutesTUICommand(t *testing.T) {
	dir := t.TempDir()
	srv := newFakeServer(t, dir)

	_, stderr, err := execute(t, "--port", srv.portArg(), "--cwd", dir, "command", "session.new")
	require.NoError(t, err)
	assert.Equal(t, []string{"tui.command.execute:session.new"}, srv.published())
	assert.Contains(t, stderr, "Executed: session.new")
}
