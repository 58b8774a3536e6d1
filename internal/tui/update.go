package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"quantum-chat/internal/chat"
	"quantum-chat/internal/history"
	"quantum-chat/internal/session"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case messageMsg:
		m.messages = append(m.messages, msg.msg)
		m.refreshViewport()
		return m, nil

	case transcriptMsg:
		m.messages = append([]history.Message(nil), msg.msgs...)
		m.refreshViewport()
		return m, nil

	case waitingMsg:
		m.waiting = msg.waiting
		if m.waiting {
			return m, m.spinner.Tick
		}
		return m, nil

	case keyStatusMsg:
		m.keyStatus = msg.status
		return m, nil

	case resultMsg:
		m.result = formatResult(msg.res)
		return m, nil

	case savedMsg:
		m.setStatus(chat.SavedText(msg.path), false)
		return m, m.refreshConversations()

	case loadedMsg:
		m.setStatus(chat.LoadedText(msg.path), false)
		return m, nil

	case errorMsg:
		m.setStatus(fmt.Sprintf("Error: %v", msg.err), true)
		return m, nil

	case conversationsMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Error: %v", msg.err), true)
			return m, nil
		}
		items := []list.Item{conversationItem(placeholderItem)}
		for _, name := range msg.names {
			items = append(items, conversationItem(name))
		}
		return m, m.picker.SetItems(items)

	case flowDoneMsg:
		m.busy = false
		m.waiting = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	// Input is blocked while a flow is in flight.
	if m.busy {
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab:
		return m.setFocus((m.focus + 1) % focusCount)
	case tea.KeyShiftTab:
		return m.setFocus((m.focus + focusCount - 1) % focusCount)
	case tea.KeyCtrlS:
		m.busy = true
		return m, m.save()
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch m.focus {
	case focusChat:
		return m.handleChatKey(msg)
	case focusKey:
		return m.handleKeyInput(msg)
	case focusScript:
		return m.handleScriptKey(msg)
	case focusLoad:
		return m.handleLoadKey(msg)
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		text := m.input.Value()
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.busy = true
		return m, m.submit(text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyInput re-validates the key on every edit.
func (m Model) handleKeyInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.keyInput.Value()
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	if after := m.keyInput.Value(); after != before {
		m.orc.ChangeKey(m.st, after)
	}
	return m, cmd
}

func (m Model) handleScriptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlE {
		m.busy = true
		return m, m.execute(m.script.Value())
	}
	var cmd tea.Cmd
	m.script, cmd = m.script.Update(msg)
	return m, cmd
}

func (m Model) handleLoadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		item, ok := m.picker.SelectedItem().(conversationItem)
		if !ok || item == placeholderItem {
			return m, nil
		}
		m.busy = true
		return m, m.load(string(item))
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) setFocus(f focus) (tea.Model, tea.Cmd) {
	m.focus = f
	m.input.Blur()
	m.keyInput.Blur()
	m.script.Blur()

	var cmd tea.Cmd
	switch f {
	case focusChat:
		cmd = m.input.Focus()
	case focusKey:
		cmd = m.keyInput.Focus()
	case focusScript:
		cmd = m.script.Focus()
	case focusLoad:
		// The selector is re-listed each time it is opened.
		cmd = m.refreshConversations()
	}
	return m, cmd
}

func (m *Model) setStatus(text string, bad bool) {
	m.status = text
	m.statusBad = bad
}

func (m Model) resize(width, height int) Model {
	m.width, m.height = width, height
	chatWidth := max(width-sidebarWidth-2, 20)
	m.viewport.Width = chatWidth
	m.viewport.Height = max(height-6, 5)
	m.input.Width = chatWidth - 4
	m.picker.SetSize(sidebarWidth-4, 6)
	m.renderer = newRenderer(m.theme, max(chatWidth-4, 16))
	m.ready = true
	m.refreshViewport()
	return m
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

func keyIndicator(status session.KeyStatus) (string, bool) {
	switch status {
	case session.KeyValid:
		return chat.KeyValidText, true
	case session.KeyInvalid:
		return chat.KeyInvalidText, false
	default:
		return "", true
	}
}
