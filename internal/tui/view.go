package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quantum-chat/internal/chat"
	"quantum-chat/internal/history"
)

const (
	appTitle  = "Quantum X Conversational Interface 🌐🤖"
	sideTitle = "Quantum X Chat 🌈"
	helpLine  = "tab focus • enter send/load • ctrl+s save • ctrl+e execute • ctrl+c quit"
)

func (m Model) View() string {
	if !m.ready {
		return "Starting Quantum X Chat..."
	}
	side := m.styles.Sidebar.Width(sidebarWidth).Render(m.sidebarView())
	return lipgloss.JoinHorizontal(lipgloss.Top, side, " ", m.chatView())
}

func (m Model) chatView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(appTitle))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if m.waiting {
		b.WriteString(m.spinner.View() + " " + chat.ThinkingText)
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(helpLine))
	return b.String()
}

func (m Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(sideTitle))

	b.WriteString(m.section("Enter API Key 🔑 www.QuantumIntelligence.ca", focusKey))
	b.WriteString(m.keyInput.View() + "\n")
	if text, good := keyIndicator(m.keyStatus); text != "" {
		style := m.styles.Bad
		if good {
			style = m.styles.Good
		}
		b.WriteString(style.Render(text) + "\n")
	}

	b.WriteString(m.section("Save Conversation 💾 (ctrl+s)", -1))
	if m.status != "" {
		style := m.styles.Good
		if m.statusBad {
			style = m.styles.Bad
		}
		b.WriteString(style.Width(sidebarWidth-2).Render(m.status) + "\n")
	}

	b.WriteString(m.section("Load Selected Conversation (enter)", focusLoad))
	b.WriteString(m.picker.View() + "\n")

	b.WriteString(m.section("Quantum Script Executor 🔬 (ctrl+e)", focusScript))
	b.WriteString(m.script.View() + "\n")
	if m.result != "" {
		b.WriteString(m.styles.Muted.Render(m.result) + "\n")
	}
	return b.String()
}

func (m Model) section(title string, f focus) string {
	if f == m.focus {
		return m.styles.Focused.Render("▸ "+title) + "\n"
	}
	return m.styles.Section.Render(title) + "\n"
}

func (m Model) renderMessages() string {
	if len(m.messages) == 0 {
		return m.styles.Muted.Render("No messages yet.")
	}
	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			b.WriteString("\n")
		}
		if msg.Role == history.RoleUser {
			b.WriteString(m.styles.User.Render("🧑 You"))
		} else {
			b.WriteString(m.styles.Assistant.Render("🤖 Quantum X"))
		}
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(msg.Content))
	}
	return b.String()
}

func (m Model) renderMarkdown(text string) string {
	if m.renderer == nil {
		return text + "\n"
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text + "\n"
	}
	return out
}
