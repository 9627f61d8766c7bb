// Package menu builds the entries offered by the select session and
// filters them as the user types.
package menu

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/wk-j/opencode-helix/internal/opencode"
	"github.com/wk-j/opencode-helix/internal/prompts"
)

// Category groups menu entries. The order of the constants is the display order.
type Category int

const (
	CategoryPrompt Category = iota
	CategoryCommand
	CategoryAgent
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPrompt, CategoryCommand, CategoryAgent}

// Label is the group heading shown above the category's entries.
func (c Category) Label() string {
	switch c {
	case CategoryPrompt:
		return "PROMPTS"
	case CategoryCommand:
		return "COMMANDS"
	case CategoryAgent:
		return "AGENTS"
	}
	return "OTHER"
}

func (c Category) String() string {
	switch c {
	case CategoryPrompt:
		return "prompt"
	case CategoryCommand:
		return "command"
	case CategoryAgent:
		return "agent"
	}
	return "unknown"
}

// Item is one selectable entry.
type Item struct {
	Category    Category
	Name        string
	Description string
	// Template is the prompt text submitted when the item is chosen.
	Template string
}

// FromPrompts converts named prompts into Prompt entries.
func FromPrompts(list []prompts.Prompt) []Item {
	items := make([]Item, 0, len(list))
	for _, p := range list {
		items = append(items, Item{
			Category:    CategoryPrompt,
			Name:        p.Name,
			Description: p.Description,
			Template:    p.Template,
		})
	}
	return items
}

// FromCommands converts server commands into "/name" entries.
func FromCommands(list []opencode.Command) []Item {
	items := make([]Item, 0, len(list))
	for _, c := range list {
		template := c.Template
		if strings.TrimSpace(template) == "" {
			template = "/" + c.Name
		}
		items = append(items, Item{
			Category:    CategoryCommand,
			Name:        "/" + c.Name,
			Description: c.Description,
			Template:    template,
		})
	}
	return items
}

// FromAgents converts subagents into "@name" entries. Primary agents
// cannot be mentioned and are dropped.
func FromAgents(list []opencode.Agent) []Item {
	items := make([]Item, 0, len(list))
	for _, a := range list {
		if !a.IsSubagent() {
			continue
		}
		items = append(items, Item{
			Category:    CategoryAgent,
			Name:        "@" + a.Name,
			Description: a.Description,
			Template:    "@" + a.Name + " ",
		})
	}
	return items
}

// Build concatenates entries grouped by category in display order,
// keeping the relative order within each group.
func Build(groups ...[]Item) []Item {
	var all []Item
	for _, g := range groups {
		all = append(all, g...)
	}

	out := make([]Item, 0, len(all))
	for _, c := range Categories {
		for _, it := range all {
			if it.Category == c {
				out = append(out, it)
			}
		}
	}
	return out
}

// Filter returns the indexes of items whose name or description
// fuzzy-matches query, ignoring case, in their original order. An empty
// query matches everything.
func Filter(items []Item, query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		all := make([]int, len(items))
		for i := range items {
			all[i] = i
		}
		return all
	}

	hit := make([]bool, len(items))
	for _, m := range fuzzy.FindFrom(query, names(items)) {
		hit[m.Index] = true
	}
	for _, m := range fuzzy.FindFrom(query, descriptions(items)) {
		hit[m.Index] = true
	}

	var out []int
	for i, ok := range hit {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

type names []Item

func (n names) String(i int) string { return strings.ToLower(n[i].Name) }
func (n names) Len() int            { return len(n) }

type descriptions []Item

func (d descriptions) String(i int) string { return strings.ToLower(d[i].Description) }
func (d descriptions) Len() int            { return len(d) }
