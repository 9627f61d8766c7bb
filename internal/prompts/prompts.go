// Package prompts holds the named prompt templates offered by the menu and
// the prompt command: built-in defaults, inline config entries and
// Markdown files from the prompts directory.
package prompts

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/wk-j/opencode-helix/internal/config"
	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/pkg/fileutil"
	"github.com/wk-j/opencode-helix/pkg/frontmatter"
)

// Source records where a prompt was defined.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceConfig  Source = "config"
	SourceFile    Source = "file"
)

// Prompt is a named template that may contain placeholders such as @this.
type Prompt struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Template    string `json:"template" yaml:"template"`
	Source      Source `json:"source" yaml:"source"`
	Path        string `json:"path,omitempty" yaml:"path,omitempty"`
}

var builtins = []Prompt{
	{Name: "explain", Template: "Explain how this code works: @this", Description: "Explain the selected code"},
	{Name: "review", Template: "Review this code and suggest improvements: @this", Description: "Code review"},
	{Name: "fix", Template: "Fix the issue in this code: @this", Description: "Fix code issues"},
	{Name: "implement", Template: "Implement based on the context: @this", Description: "Implement code"},
	{Name: "tests", Template: "Write tests for this code: @this", Description: "Generate tests"},
	{Name: "docs", Template: "Add documentation to this code: @this", Description: "Add documentation"},
	{Name: "refactor", Template: "Refactor this code to be cleaner and more maintainable: @this", Description: "Refactor code"},
	{Name: "optimize", Template: "Optimize this code for better performance: @this", Description: "Optimize performance"},
}

// Builtins returns a copy of the default prompts.
func Builtins() []Prompt {
	out := slices.Clone(builtins)
	for i := range out {
		out[i].Source = SourceBuiltin
	}
	return out
}

// FromConfig converts inline config prompts.
func FromConfig(entries []config.Prompt) []Prompt {
	out := make([]Prompt, 0, len(entries))
	for _, e := range entries {
		out = append(out, Prompt{
			Name:        e.Name,
			Description: e.Description,
			Template:    e.Prompt,
			Source:      SourceConfig,
		})
	}
	return out
}

type fileMeta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// LoadDir reads every *.md file of dir. The frontmatter may set name and
// description; the name defaults to the file name without extension and the
// body is the template. A missing directory yields no prompts. Files that
// cannot be read or parsed are skipped with a warning.
func LoadDir(dir string, log *slog.Logger) ([]Prompt, error) {
	if dir == "" {
		return nil, nil
	}
	if log == nil {
		log = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "reading prompts directory %s", dir)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]Prompt, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		p, err := loadFile(path)
		if err != nil {
			log.Warn("skipping prompt file", "path", path, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func loadFile(path string) (Prompt, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return Prompt{}, err
	}

	var meta fileMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return Prompt{}, err
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if strings.ContainsAny(name, " \t\n") {
		return Prompt{}, errors.Newf("prompt name %q contains whitespace", name)
	}

	template := strings.TrimSpace(string(body))
	if template == "" {
		return Prompt{}, errors.New("prompt body is empty")
	}

	return Prompt{
		Name:        name,
		Description: strings.TrimSpace(meta.Description),
		Template:    template,
		Source:      SourceFile,
		Path:        path,
	}, nil
}

// Merge layers prompt lists. A later prompt replaces an earlier one of the
// same name in place; new names are appended in order.
func Merge(layers ...[]Prompt) []Prompt {
	var out []Prompt
	index := make(map[string]int)

	for _, layer := range layers {
		for _, p := range layer {
			if i, ok := index[p.Name]; ok {
				out[i] = p
				continue
			}
			index[p.Name] = len(out)
			out = append(out, p)
		}
	}
	return out
}

// Load returns built-ins overridden by inline config prompts and then by
// files in cfg.PromptsDir.
func Load(cfg *config.Config, log *slog.Logger) ([]Prompt, error) {
	if cfg == nil {
		return Builtins(), nil
	}

	files, err := LoadDir(cfg.PromptsDir, log)
	if err != nil {
		return nil, err
	}
	return Merge(Builtins(), FromConfig(cfg.Prompts), files), nil
}

// Find returns the prompt called name.
func Find(list []Prompt, name string) (Prompt, bool) {
	for _, p := range list {
		if p.Name == name {
			return p, true
		}
	}
	return Prompt{}, false
}
