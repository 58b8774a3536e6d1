package tui

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"quantum-chat/internal/chat"
	"quantum-chat/internal/history"
	"quantum-chat/internal/quantum"
	"quantum-chat/internal/session"
	"quantum-chat/internal/storage"
)

type focus int

const (
	focusChat focus = iota
	focusKey
	focusScript
	focusLoad
	focusCount
)

const (
	sidebarWidth    = 44
	placeholderItem = "Select a conversation"
)

type conversationItem string

func (i conversationItem) FilterValue() string { return string(i) }
func (i conversationItem) Title() string       { return string(i) }
func (i conversationItem) Description() string { return "" }

type Options struct {
	Remote chat.Remote
	Store  storage.Store
	State  *session.State
	Theme  string
	Logger *zap.Logger
	// InitialKey prefills the key field and is validated like typed input.
	InitialKey string
}

type Model struct {
	ctx  context.Context
	orc  *chat.Orchestrator
	st   *session.State
	sink *sink

	focus    focus
	input    textinput.Model
	keyInput textinput.Model
	script   textarea.Model
	picker   list.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	theme    string
	styles   styles

	messages   []history.Message
	keyStatus  session.KeyStatus
	status     string
	statusBad  bool
	result     string
	waiting    bool
	busy       bool
	ready      bool
	width      int
	height     int
}

func newModel(ctx context.Context, opts Options) Model {
	s := newSink()
	theme := opts.Theme
	switch theme {
	case "light", "notty":
	default:
		theme = "dark"
	}

	ti := textinput.New()
	ti.Placeholder = "Ask me anything about Quantum Computing! 🧠"
	ti.Prompt = "| "
	ti.CharLimit = 4096
	ti.Focus()

	ki := textinput.New()
	ki.Placeholder = "Your API key should start with 'oneness_'"
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '•'
	ki.Prompt = "🔑 "
	ki.Width = sidebarWidth - 8

	ta := textarea.New()
	ta.Placeholder = "Enter Quantum Cirq Script"
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(sidebarWidth - 4)
	ta.SetHeight(8)

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	picker := list.New([]list.Item{conversationItem(placeholderItem)}, delegate, sidebarWidth-4, 6)
	picker.Title = "Load Previous Conversation 📂"
	picker.SetShowHelp(false)
	picker.SetShowStatusBar(false)
	picker.SetFilteringEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	sty := newStyles(theme != "light")
	sp.Style = sty.Spinner

	m := Model{
		ctx:      ctx,
		orc:      chat.New(opts.Remote, opts.Store, s, opts.Logger),
		st:       opts.State,
		sink:     s,
		input:    ti,
		keyInput: ki,
		script:   ta,
		picker:   picker,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		renderer: newRenderer(theme, 76),
		theme:    theme,
		styles:   sty,
		messages: opts.State.Transcript().Messages(),
	}

	key := opts.InitialKey
	if key == "" {
		key = opts.State.APIKey()
	}
	if key != "" {
		m.keyInput.SetValue(key)
		m.orc.ChangeKey(m.st, key)
	}
	return m
}

func newRenderer(theme string, wrap int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.refreshConversations())
}

// Flow commands run one orchestrator flow off the update loop. Their visible
// effects and the final flowDoneMsg all travel through the sink, in order.

func (m Model) flow(run func()) tea.Cmd {
	s := m.sink
	return func() tea.Msg {
		run()
		s.emit(flowDoneMsg{})
		return nil
	}
}

func (m Model) submit(text string) tea.Cmd {
	ctx, orc, st := m.ctx, m.orc, m.st
	return m.flow(func() { orc.Submit(ctx, st, text) })
}

func (m Model) execute(script string) tea.Cmd {
	ctx, orc, st := m.ctx, m.orc, m.st
	return m.flow(func() { orc.Execute(ctx, st, script) })
}

func (m Model) save() tea.Cmd {
	orc, st := m.orc, m.st
	return m.flow(func() { _, _ = orc.Save(st) })
}

func (m Model) load(name string) tea.Cmd {
	orc, st := m.orc, m.st
	return m.flow(func() { _ = orc.Load(st, name) })
}

func (m Model) refreshConversations() tea.Cmd {
	orc := m.orc
	return func() tea.Msg {
		names, err := orc.Conversations()
		return conversationsMsg{names: names, err: err}
	}
}

func formatResult(res quantum.ScriptResult) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, res.JSON(), "", "  "); err != nil {
		return string(res.JSON())
	}
	return buf.String()
}
