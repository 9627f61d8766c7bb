package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wk-j/opencode-helix/internal/editor"
	"github.com/wk-j/opencode-helix/internal/errors"
	"github.com/wk-j/opencode-helix/internal/menu"
	"github.com/wk-j/opencode-helix/internal/opencode"
	"github.com/wk-j/opencode-helix/internal/prompts"
)

// DefaultRequestTimeout bounds menu fetches and the submit call.
const DefaultRequestTimeout = 5 * time.Second

// Options configures a session.
type Options struct {
	Mode      Mode
	Seed      string
	Context   editor.Context
	Transport Transport
	Expander  editor.Expander
	// Prompts are the named prompts of the menu; nil means the built-ins.
	Prompts        []prompts.Prompt
	Theme          Theme
	Submit         opencode.SubmitOptions
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Result is the outcome of a finished session.
type Result struct {
	State State
	// Prompt is the expanded prompt that was submitted.
	Prompt string
}

// Submitted reports whether the session ended with a successful submit.
func (r Result) Submitted() bool {
	return r.State == StateDone
}

type submitResultMsg struct {
	err error
}

// Model is the bubbletea model of a session.
type Model struct {
	ctx  context.Context
	opts Options
	log  *slog.Logger
	st   styles

	state State
	prior State

	input textinput.Model

	items   []menu.Item
	filter  textinput.Model
	visible []int
	cursor  int

	banner string
	prompt string

	width  int
	height int
}

// New returns a session in Idle. Call Start to enter the input state.
func New(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Theme.Name == "" {
		opts.Theme = ThemeByName(DefaultTheme)
	}
	if opts.Prompts == nil {
		opts.Prompts = prompts.Builtins()
	}

	st := opts.Theme.styles()
	return Model{
		ctx:    ctx,
		opts:   opts,
		log:    opts.Logger,
		st:     st,
		state:  StateIdle,
		input:  newTextInput(st, opts.Theme.Prompt),
		filter: newTextInput(st, opts.Theme.FilterPrompt),
	}
}

func newTextInput(st styles, prompt string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.PromptStyle = st.prompt
	ti.TextStyle = st.inputText
	ti.CharLimit = 0
	// a static cursor needs no blink ticks
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	_ = ti.Focus()
	return ti
}

// Start leaves Idle for the state chosen by the mode. Entering SelectMenu
// fetches the server's commands and agents; failures fall back to the
// named prompts alone.
func (m Model) Start() Model {
	if m.state != StateIdle {
		return m
	}

	switch m.opts.Mode {
	case ModeSelect:
		m.items = m.loadMenu()
		m.visible = menu.Filter(m.items, "")
	default:
		m.input.SetValue(m.opts.Seed)
		m.input.CursorEnd()
	}
	m.transition(m.opts.Mode.state())
	return m
}

func (m Model) loadMenu() []menu.Item {
	named := menu.FromPrompts(m.opts.Prompts)
	if m.opts.Transport == nil {
		return menu.Build(named)
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.opts.RequestTimeout)
	defer cancel()

	commands, err := m.opts.Transport.ListCommands(ctx)
	if err != nil {
		m.log.Debug("commands unavailable", "error", err)
		commands = nil
	}
	agents, err := m.opts.Transport.ListAgents(ctx)
	if err != nil {
		m.log.Debug("agents unavailable", "error", err)
		agents = nil
	}

	return menu.Build(named, menu.FromCommands(commands), menu.FromAgents(agents))
}

func (m *Model) transition(to State) {
	if !CanTransition(m.state, to) {
		m.log.Warn("ignored invalid transition", "from", m.state, "to", to)
		return
	}
	m.log.Debug("session transition", "from", m.state, "to", to)
	m.state = to
}

// State returns the current state.
func (m Model) State() State { return m.state }

// Banner returns the error banner, empty when none is shown.
func (m Model) Banner() string { return m.banner }

// InputValue returns the AskInput buffer.
func (m Model) InputValue() string { return m.input.Value() }

// Query returns the SelectMenu filter text.
func (m Model) Query() string { return m.filter.Value() }

// Visible returns the filtered menu entries in display order.
func (m Model) Visible() []menu.Item {
	out := make([]menu.Item, 0, len(m.visible))
	for _, i := range m.visible {
		out = append(out, m.items[i])
	}
	return out
}

// Selected returns the highlighted menu entry.
func (m Model) Selected() (menu.Item, bool) {
	if len(m.visible) == 0 {
		return menu.Item{}, false
	}
	return m.items[m.visible[m.cursor]], true
}

// Result returns the outcome so far.
func (m Model) Result() Result {
	r := Result{State: m.state}
	if m.state == StateDone {
		r.Prompt = m.prompt
	}
	return r
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch t := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = t.Width, t.Height
		w := m.boxWidth() - 6
		m.input.Width = w - len([]rune(m.opts.Theme.Prompt))
		m.filter.Width = w - len([]rune(m.opts.Theme.FilterPrompt))
		return m, nil
	case submitResultMsg:
		return m.finishSubmit(t.err)
	case tea.KeyMsg:
		return m.handleKey(t)
	}
	return m, nil
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	// the single submit call is in flight; keys wait for its result
	if m.state == StateSubmitting || m.state.Terminal() {
		return m, nil
	}

	switch k.String() {
	case "esc", "ctrl+c":
		m.transition(StateCancelled)
		return m, tea.Quit
	}

	switch m.state {
	case StateAskInput:
		return m.updateAsk(k)
	case StateSelectMenu:
		return m.updateMenu(k)
	}
	return m, nil
}

func (m Model) updateAsk(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if k.String() == "enter" {
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		return m.beginSubmit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	return m, cmd
}

func (m Model) updateMenu(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "up", "ctrl+p", "shift+tab":
		m.move(-1)
		return m, nil
	case "down", "ctrl+n", "tab":
		m.move(1)
		return m, nil
	case "enter":
		item, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m.beginSubmit(item.Template)
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(k)
	if m.filter.Value() != before {
		m.visible = menu.Filter(m.items, m.filter.Value())
		m.cursor = 0
	}
	return m, cmd
}

// move shifts the highlight, wrapping at both ends.
func (m *Model) move(delta int) {
	n := len(m.visible)
	if n == 0 {
		return
	}
	m.cursor = ((m.cursor+delta)%n + n) % n
}

// beginSubmit expands raw and issues the submit call. Expansion failures
// keep the input state and show which placeholder lacked context.
func (m Model) beginSubmit(raw string) (tea.Model, tea.Cmd) {
	expanded, err := m.opts.Expander.Expand(m.ctx, raw, m.opts.Context)
	if err != nil {
		m.banner = err.Error()
		return m, nil
	}

	m.prior = m.state
	m.transition(StateSubmitting)
	m.banner = ""
	m.prompt = expanded
	return m, m.submitCmd(expanded)
}

func (m Model) submitCmd(prompt string) tea.Cmd {
	transport := m.opts.Transport
	opts := m.opts.Submit
	timeout := m.opts.RequestTimeout
	parent := m.ctx

	return func() tea.Msg {
		if transport == nil {
			return submitResultMsg{err: errors.Mark(errors.New("no server connection"), opencode.ErrUnreachable)}
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()
		return submitResultMsg{err: transport.Submit(ctx, prompt, opts)}
	}
}

func (m Model) finishSubmit(err error) (tea.Model, tea.Cmd) {
	if m.state != StateSubmitting {
		return m, nil
	}

	if err == nil {
		m.transition(StateDone)
		return m, tea.Quit
	}

	m.log.Debug("submit failed", "error", err)
	// a failed submit may have left text in the server prompt
	m.opts.Submit.Clear = true
	m.transition(m.prior)
	m.banner = submitBanner(err)
	return m, nil
}

func submitBanner(err error) string {
	switch {
	case errors.Is(err, opencode.ErrTimeout):
		return "submit failed: server timed out"
	case errors.Is(err, opencode.ErrUnreachable):
		return "submit failed: server unreachable"
	case errors.Is(err, opencode.ErrBadResponse):
		return "submit failed: server rejected the request"
	}
	return "submit failed: " + err.Error()
}
