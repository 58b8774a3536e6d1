package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"quantum-chat/internal/chat"
	"quantum-chat/internal/session"
	"quantum-chat/internal/storage"
)

const (
	loadPrefix    = "load:"
	noSavedText   = "No saved conversations yet 📂"
	pickText      = "Load Previous Conversation 📂"
	emptyExecText = "Usage: /exec <quantum cirq script>"
	helpText      = "Quantum X Chat 🌈\n\n" +
		"/key <api key> - set your API key (the message is deleted)\n" +
		"/save - save the conversation 💾\n" +
		"/list - load a previous conversation 📂\n" +
		"/exec <script> - execute a quantum script 🚀\n" +
		"/history - show the current conversation\n" +
		"Anything else is sent to Quantum X."
)

// Bot serves a single session bound to the owner chat. Updates from any
// other chat are dropped.
type Bot struct {
	api       *tgbotapi.BotAPI
	s         sender
	orc       *chat.Orchestrator
	st        *session.State
	chatID    int64
	parseMode string
	log       *zap.Logger
}

func New(botToken string, remote chat.Remote, store storage.Store, st *session.State, ownerChatID int64, parseMode string, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, remote, store, st, ownerChatID, parseMode, log)
	b.api = api
	return b, nil
}

func newBot(s sender, remote chat.Remote, store storage.Store, st *session.State, ownerChatID int64, parseMode string, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bot{s: s, st: st, chatID: ownerChatID, parseMode: parseMode, log: log}
	b.orc = chat.New(remote, store, b, log)
	return b
}

// Start polls for updates until ctx is cancelled. Updates are handled one at
// a time, so a chat turn blocks the next one.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("telegram bot started", zap.String("username", b.api.Self.UserName), zap.Int64("owner_chat", b.chatID))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleIncomingMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) owns(c *tgbotapi.Chat) bool {
	return c != nil && c.ID == b.chatID
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !b.owns(msg.Chat) {
		var from string
		if msg.From != nil {
			from = msg.From.UserName
		}
		b.log.Warn("message from foreign chat ignored", zap.Int64("chat", chatIDOf(msg.Chat)), zap.String("username", from))
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	b.orc.Submit(ctx, b.st, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start", "help":
		b.sendPlain(helpText)
	case "key":
		// Keys must not stay in the chat history.
		b.deleteMessage(msg.MessageID)
		b.orc.ChangeKey(b.st, args)
	case "save":
		_, _ = b.orc.Save(b.st)
	case "list":
		b.sendConversationPicker()
	case "exec":
		if args == "" {
			b.sendPlain(emptyExecText)
			return
		}
		b.orc.Execute(ctx, b.st, args)
	case "history":
		b.ShowTranscript(b.st.Transcript().Messages())
	default:
		b.sendPlain(helpText)
	}
}

func (b *Bot) sendConversationPicker() {
	names, err := b.orc.Conversations()
	if err != nil {
		b.ShowError(err)
		return
	}
	if len(names) == 0 {
		b.sendPlain(noSavedText)
		return
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, name := range names {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(name, loadPrefix+name),
		))
	}
	out := tgbotapi.NewMessage(b.chatID, pickText)
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.s.Send(out); err != nil {
		b.log.Error("failed to send conversation picker", zap.Error(err))
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || !b.owns(cb.Message.Chat) {
		return
	}
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", zap.Error(err))
	}
	if name, ok := strings.CutPrefix(cb.Data, loadPrefix); ok {
		_ = b.orc.Load(b.st, name)
	}
}

func (b *Bot) deleteMessage(id int) {
	if _, err := b.s.Request(tgbotapi.NewDeleteMessage(b.chatID, id)); err != nil {
		b.log.Warn("failed to delete key message", zap.Error(err))
	}
}

func chatIDOf(c *tgbotapi.Chat) int64 {
	if c == nil {
		return 0
	}
	return c.ID
}
