// Package keymap renders Helix key bindings that launch opencode-helix
// with the editor's cursor context.
package keymap

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/pkg/fileutil"
)

const (
	// DefaultPrefix is the key pressed after space to reach the bindings.
	DefaultPrefix = "o"
	// DefaultBinary is the executable name used in the bindings.
	DefaultBinary = "opencode-helix"
)

// ErrConflict marks a Helix config whose key path is not a table.
var ErrConflict = errors.New("conflicting helix key binding")

// Helix command line expansions (Helix 25.01+). They must stay unquoted
// so Helix substitutes them before the shell runs.
const (
	exBufferName = "%{buffer_name}"
	exLine       = "%{cursor_line}"
	exColumn     = "%{cursor_column}"
	exLanguage   = "%{language}"
)

// Binding is one key under the prefix.
type Binding struct {
	Key         string
	Description string
	Args        []string
}

// Bindings returns the default set bound under the prefix.
func Bindings() []Binding {
	return []Binding{
		{Key: "a", Description: "ask opencode", Args: []string{"ask"}},
		{Key: "s", Description: "select a prompt", Args: []string{"select"}},
		{Key: "e", Description: "explain code", Args: []string{"prompt", "explain"}},
		{Key: "r", Description: "review code", Args: []string{"prompt", "review"}},
	}
}

// Options configures the generated bindings.
type Options struct {
	Prefix string
	// Binary is the command Helix runs; a path with spaces is quoted.
	Binary string
	// Theme, when set, is passed with --theme.
	Theme string
	// Port, when non-zero, pins the server with --port.
	Port int
	// Modes are the Helix modes receiving the bindings.
	Modes []string
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Binary == "" {
		o.Binary = DefaultBinary
	}
	if len(o.Modes) == 0 {
		o.Modes = []string{"normal", "select"}
	}
	return o
}

// CommandLine returns the shell command Helix runs for b.
func (o Options) CommandLine(b Binding) string {
	o = o.withDefaults()

	parts := []string{
		shellescape.Quote(o.Binary),
		"--file", exBufferName,
		"--line", exLine,
		"--column", exColumn,
		"--language", exLanguage,
	}
	if o.Theme != "" {
		parts = append(parts, "--theme", shellescape.Quote(o.Theme))
	}
	if o.Port > 0 {
		parts = append(parts, "--port", strconv.Itoa(o.Port))
	}
	for _, a := range b.Args {
		parts = append(parts, shellescape.Quote(a))
	}
	return strings.Join(parts, " ")
}

// table returns the bindings as a Helix key table. Interactive commands
// redraw the editor after the dialog closes.
func (o Options) table() map[string]any {
	t := make(map[string]any)
	for _, b := range Bindings() {
		sh := ":sh " + o.CommandLine(b)
		if b.Args[0] == "prompt" {
			t[b.Key] = sh
			continue
		}
		t[b.Key] = []string{sh, ":redraw"}
	}
	return t
}

// Snippet renders a config.toml fragment holding only the bindings.
func Snippet(opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	doc := make(map[string]any)
	if err := insert(doc, opts); err != nil {
		return nil, err
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling keymap")
	}
	return out, nil
}

// Merge adds the bindings to an existing Helix config, replacing keys of the
// same name under the prefix and keeping everything else. Comments and
// ordering of the original are not preserved.
func Merge(existing []byte, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	doc := make(map[string]any)
	if len(strings.TrimSpace(string(existing))) > 0 {
		if err := toml.Unmarshal(existing, &doc); err != nil {
			return nil, errors.Wrap(err, "parsing helix config")
		}
	}
	if err := insert(doc, opts); err != nil {
		return nil, err
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling helix config")
	}
	return out, nil
}

func insert(doc map[string]any, opts Options) error {
	bindings := opts.table()
	for _, mode := range opts.Modes {
		t, err := subtable(doc, "keys", mode, "space", opts.Prefix)
		if err != nil {
			return err
		}
		for k, v := range bindings {
			t[k] = v
		}
	}
	return nil
}

// subtable walks path, creating missing tables.
func subtable(doc map[string]any, path ...string) (map[string]any, error) {
	cur := doc
	for i, key := range path {
		next, ok := cur[key]
		if !ok {
			t := make(map[string]any)
			cur[key] = t
			cur = t
			continue
		}
		t, ok := next.(map[string]any)
		if !ok {
			return nil, errors.Mark(
				errors.Newf("%s is bound to a command, not a key table", strings.Join(path[:i+1], ".")),
				ErrConflict)
		}
		cur = t
	}
	return cur, nil
}

// DefaultConfigPath returns Helix's user config.toml.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "helix", "config.toml")
}

// Write merges the bindings into the Helix config at path, creating the
// file when missing.
func Write(path string, opts Options) error {
	existing, err := fileutil.ReadFileWithLimit(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "reading %s", path)
	}

	out, err := Merge(existing, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating helix config directory")
	}
	perm := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}
	return fileutil.AtomicWriteFile(path, out, perm)
}
