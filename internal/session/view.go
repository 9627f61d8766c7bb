package session

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wk-j/opencode-helix/internal/menu"
)

const (
	maxBoxWidth     = 80
	defaultBoxWidth = 64
	defaultRows     = 12
	nameColumn      = 16
)

func (m Model) boxWidth() int {
	if m.width <= 0 {
		return defaultBoxWidth
	}
	return max(20, min(m.width-2, maxBoxWidth))
}

func (m Model) menuRows() int {
	if m.height <= 0 {
		return defaultRows
	}
	return max(3, m.height-12)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.state.Terminal() {
		return ""
	}

	var body []string
	body = append(body, m.st.title.Render(m.opts.Theme.Title))
	if loc, ok := m.opts.Context.Location(); ok {
		body = append(body, m.st.hint.Render(loc))
	}
	body = append(body, "")

	switch m.state {
	case StateSelectMenu:
		body = append(body, m.filter.View(), "")
		body = append(body, m.menuView()...)
	case StateSubmitting:
		if m.prior == StateSelectMenu {
			body = append(body, m.filter.View(), "")
			body = append(body, m.menuView()...)
		} else {
			body = append(body, m.input.View())
		}
	default:
		body = append(body, m.input.View())
	}

	body = append(body, "", m.footer())

	box := m.st.box.Width(m.boxWidth() - 2)
	return box.Render(strings.Join(body, "\n"))
}

func (m Model) footer() string {
	switch {
	case m.state == StateSubmitting:
		return m.st.status.Render("sending...")
	case m.banner != "":
		return m.st.banner.Render(m.banner)
	case m.state == StateSelectMenu:
		return m.st.help.Render("↑/↓ move · enter send · esc cancel")
	}
	return m.st.help.Render("enter send · esc cancel")
}

// menuLine is one row of the menu: a category heading or the item at pos
// in visible.
type menuLine struct {
	heading bool
	pos     int
}

func (m Model) menuView() []string {
	if len(m.visible) == 0 {
		return []string{m.st.hint.Render("no matches")}
	}

	var all []menuLine
	cur := 0
	var current menu.Category = -1
	for pos, idx := range m.visible {
		if c := m.items[idx].Category; c != current {
			current = c
			all = append(all, menuLine{heading: true, pos: pos})
		}
		if pos == m.cursor {
			cur = len(all)
		}
		all = append(all, menuLine{pos: pos})
	}

	// headings count against the window
	rows := m.menuRows()
	start := 0
	if cur >= rows {
		start = cur - rows + 1
	}
	end := min(start+rows, len(all))

	lines := make([]string, 0, end-start+1)
	for _, ml := range all[start:end] {
		item := m.items[m.visible[ml.pos]]
		if ml.heading {
			lines = append(lines, m.st.heading.Render(item.Category.Label()))
			continue
		}
		lines = append(lines, m.itemLine(item, ml.pos == m.cursor))
	}
	if end < len(all) {
		lines = append(lines, m.st.hint.Render("  ..."))
	}
	return lines
}

func (m Model) itemLine(item menu.Item, selected bool) string {
	prefix := m.opts.Theme.UnselectedPrefix
	style := m.st.item
	if selected {
		prefix = m.opts.Theme.SelectedPrefix
		style = m.st.selected
	}

	name := item.Name
	if pad := nameColumn - lipgloss.Width(name); pad > 0 {
		name += strings.Repeat(" ", pad)
	}

	line := style.Render(prefix + name)
	if item.Description != "" {
		room := m.boxWidth() - 6 - lipgloss.Width(prefix) - nameColumn
		line += " " + m.st.desc.Render(truncate(item.Description, room))
	}
	return line
}

func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
