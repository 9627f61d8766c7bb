package editor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/git"
)

// Placeholder tokens recognized by Expand, without the leading '@'.
const (
	TokenThis      = "this"
	TokenBuffer    = "buffer"
	TokenPath      = "path"
	TokenSelection = "selection"
	TokenDiff      = "diff"
)

// Tokens lists every recognized placeholder in display order.
var Tokens = []string{TokenThis, TokenBuffer, TokenPath, TokenSelection, TokenDiff}

// ErrMissingContext marks expansion failures caused by absent editor data.
var ErrMissingContext = errors.New("missing context")

// MissingContextError reports the placeholder whose data was not supplied.
type MissingContextError struct {
	Token string
}

func (e *MissingContextError) Error() string {
	return "missing context for @" + e.Token
}

// Is makes errors.Is(err, ErrMissingContext) match.
func (e *MissingContextError) Is(target error) bool {
	return target == ErrMissingContext
}

// Differ produces the diff text inserted for @diff.
type Differ interface {
	Diff(ctx context.Context, dir string) (string, error)
}

// DifferFunc adapts a function to the Differ interface.
type DifferFunc func(ctx context.Context, dir string) (string, error)

// Diff calls f.
func (f DifferFunc) Diff(ctx context.Context, dir string) (string, error) {
	return f(ctx, dir)
}

// GitDiffer reads the working tree diff with git.
var GitDiffer Differ = DifferFunc(git.Diff)

// Expander expands placeholders using its Differ for @diff.
type Expander struct {
	Differ Differ
	Logger *slog.Logger
}

// Expand expands prompt with the git-backed default Expander.
func Expand(ctx context.Context, prompt string, ec Context) (string, error) {
	return Expander{Differ: GitDiffer}.Expand(ctx, prompt, ec)
}

// Expand scans prompt once, left to right, and replaces each recognized
// token. Replacement text is never rescanned. Unrecognized @words are kept.
func (x Expander) Expand(ctx context.Context, prompt string, ec Context) (string, error) {
	if !strings.Contains(prompt, "@") {
		return prompt, nil
	}

	var out strings.Builder
	out.Grow(len(prompt))

	for i := 0; i < len(prompt); {
		if prompt[i] != '@' || (i > 0 && isWordByte(prompt[i-1])) {
			out.WriteByte(prompt[i])
			i++
			continue
		}

		j := i + 1
		for j < len(prompt) && isWordByte(prompt[j]) {
			j++
		}
		token := prompt[i+1 : j]

		text, recognized, err := x.resolve(ctx, token, ec)
		if err != nil {
			return "", err
		}
		if recognized {
			out.WriteString(text)
		} else {
			out.WriteString(prompt[i:j])
		}
		i = j
	}

	return out.String(), nil
}

func (x Expander) resolve(ctx context.Context, token string, ec Context) (string, bool, error) {
	switch token {
	case TokenBuffer:
		if !ec.HasFile() {
			return "", true, &MissingContextError{Token: token}
		}
		return "@" + ec.RelativeFile(), true, nil

	case TokenPath:
		if !ec.HasFile() {
			return "", true, &MissingContextError{Token: token}
		}
		return ec.AbsoluteFile(), true, nil

	case TokenThis:
		loc, ok := ec.Location()
		if !ok {
			return "", true, &MissingContextError{Token: token}
		}
		return loc, true, nil

	case TokenSelection:
		text, ok := ec.Selection()
		loc, hasFile := ec.Location()
		if !ok || !hasFile {
			return "", true, &MissingContextError{Token: token}
		}
		return loc + "\n" + fence(ec.label(), text), true, nil

	case TokenDiff:
		return fence("diff", x.diff(ctx, ec.Cwd())), true, nil
	}

	return "", false, nil
}

// diff never fails: any error yields an empty block.
func (x Expander) diff(ctx context.Context, dir string) string {
	if x.Differ == nil {
		return ""
	}
	out, err := x.Differ.Diff(ctx, dir)
	if err != nil {
		x.logger().Debug("diff unavailable", "dir", dir, "error", err)
		return ""
	}
	return out
}

func (x Expander) logger() *slog.Logger {
	if x.Logger != nil {
		return x.Logger
	}
	return slog.Default()
}

func fence(label, body string) string {
	body = strings.TrimSuffix(body, "\n")
	if body == "" {
		return "```" + label + "\n```"
	}
	return "```" + label + "\n" + body + "\n```"
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}
