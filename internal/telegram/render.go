package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"quantum-chat/internal/chat"
	"quantum-chat/internal/history"
	"quantum-chat/internal/quantum"
	"quantum-chat/internal/session"
)

const keyHintText = "Enter API Key 🔑 with /key <key>. Your API key should start with 'oneness_'"

// Telegram rejects texts above 4096 characters.
const maxMessageLen = 4096

func (b *Bot) ShowMessage(msg history.Message) {
	// The user's own message is already visible in the chat.
	if msg.Role == history.RoleUser {
		return
	}
	b.sendPlain(msg.Content)
}

func (b *Bot) ShowTranscript(msgs []history.Message) {
	if len(msgs) == 0 {
		b.sendPlain("The conversation is empty.")
		return
	}
	for _, m := range msgs {
		icon := "🤖"
		if m.Role == history.RoleUser {
			icon = "🧑"
		}
		b.sendPlain(icon + " " + m.Content)
	}
}

func (b *Bot) SetWaiting(waiting bool) {
	if !waiting {
		return
	}
	if _, err := b.s.Request(tgbotapi.NewChatAction(b.chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Debug("failed to send typing action", zap.Error(err))
	}
}

func (b *Bot) ShowKeyStatus(status session.KeyStatus) {
	switch status {
	case session.KeyValid:
		b.sendPlain(chat.KeyValidText)
	case session.KeyInvalid:
		b.sendPlain(chat.KeyInvalidText)
	default:
		b.sendPlain(keyHintText)
	}
}

func (b *Bot) ShowScriptResult(res quantum.ScriptResult) {
	out := prettyJSON(res.JSON())
	if b.parseModeValue() != tgbotapi.ModeHTML {
		b.sendPlain(out)
		return
	}
	// Leave room for the <pre> wrapper.
	for _, part := range splitText(out, maxMessageLen-len("<pre></pre>")) {
		b.send("<pre>" + tgbotapi.EscapeText(tgbotapi.ModeHTML, part) + "</pre>")
	}
}

func (b *Bot) ShowSaved(path string)  { b.sendPlain(chat.SavedText(path)) }
func (b *Bot) ShowLoaded(path string) { b.sendPlain(chat.LoadedText(path)) }

func (b *Bot) ShowError(err error) {
	b.sendPlain(fmt.Sprintf("⚠️ %v", err))
}

func (b *Bot) parseModeValue() string {
	switch strings.ToLower(b.parseMode) {
	case "html":
		return tgbotapi.ModeHTML
	case "markdown":
		return tgbotapi.ModeMarkdown
	case "markdownv2":
		return tgbotapi.ModeMarkdownV2
	default:
		return ""
	}
}

// sendPlain sends text that must not be interpreted as markup. Text is split
// before escaping so no chunk ends inside an escape sequence.
func (b *Bot) sendPlain(text string) {
	mode := b.parseModeValue()
	for _, part := range splitText(text, maxMessageLen) {
		if mode != "" {
			part = tgbotapi.EscapeText(mode, part)
		}
		b.send(part)
	}
}

func (b *Bot) send(text string) {
	msg := tgbotapi.NewMessage(b.chatID, text)
	msg.ParseMode = b.parseModeValue()
	if _, err := b.s.Send(msg); err != nil {
		b.log.Error("failed to send message", zap.Error(err))
	}
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// splitText cuts s into chunks of at most limit runes.
func splitText(s string, limit int) []string {
	r := []rune(s)
	if len(r) <= limit {
		return []string{s}
	}
	var parts []string
	for len(r) > limit {
		parts = append(parts, string(r[:limit]))
		r = r[limit:]
	}
	if len(r) > 0 {
		parts = append(parts, string(r))
	}
	return parts
}
