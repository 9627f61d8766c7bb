// Package git wraps the git commands used to build prompt context.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotRepository is returned when a directory is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Diff returns the unstaged working tree diff of the repository containing dir.
// An empty string means the tree is clean.
func Diff(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, dir, "--no-pager", "diff")
	if err != nil {
		return "", errors.Wrap(err, "git diff failed")
	}
	return out, nil
}

// TopLevel returns the root of the work tree containing dir.
func TopLevel(ctx context.Context, dir string) (string, error) {
	out, err := run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "resolving work tree of %s", dir), ErrNotRepository)
	}
	return strings.TrimSpace(out), nil
}

// IsRepository reports whether dir holds a .git entry. Worktrees and
// submodules use a .git file, so both files and directories count.
func IsRepository(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.Wrap(err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}
