package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"quantum-chat/internal/history"
	"quantum-chat/internal/quantum"
	"quantum-chat/internal/session"
	"quantum-chat/internal/storage"
)

const (
	ThinkingText   = "Quantum X is thinking... 🤔"
	KeyValidText   = "API key format valid ✅"
	KeyInvalidText = "Invalid API key format. Key must start with 'oneness_' ❌"
)

func SavedText(path string) string  { return fmt.Sprintf("Conversation saved: %s 💾", path) }
func LoadedText(path string) string { return fmt.Sprintf("Conversation loaded: %s 📂", path) }

type Remote interface {
	SendChatMessage(ctx context.Context, message, apiKey string) quantum.ChatReply
	ExecuteScript(ctx context.Context, script, apiKey string) quantum.ScriptResult
}

// Renderer is the presentation side of a session. Calls arrive in flow
// order from whatever goroutine runs the flow.
type Renderer interface {
	ShowMessage(msg history.Message)
	ShowTranscript(msgs []history.Message)
	SetWaiting(waiting bool)
	ShowKeyStatus(status session.KeyStatus)
	ShowScriptResult(res quantum.ScriptResult)
	ShowSaved(path string)
	ShowLoaded(path string)
	ShowError(err error)
}

type Orchestrator struct {
	remote Remote
	store  storage.Store
	view   Renderer
	log    *zap.Logger
}

func New(remote Remote, store storage.Store, view Renderer, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{remote: remote, store: store, view: view, log: log}
}

// Submit runs one chat turn. Blank input is ignored and reported with ok=false.
func (o *Orchestrator) Submit(ctx context.Context, st *session.State, text string) (history.Message, bool) {
	if strings.TrimSpace(text) == "" {
		return history.Message{}, false
	}
	tr := st.Transcript()
	o.view.ShowMessage(tr.AppendUser(text))

	o.view.SetWaiting(true)
	reply := o.remote.SendChatMessage(ctx, text, st.APIKey())
	o.view.SetWaiting(false)

	if !reply.OK() {
		o.log.Warn("chat turn degraded", zap.Stringer("outcome", reply.Outcome), zap.Error(reply.Err))
	}
	msg := tr.AppendAssistant(reply.Text)
	o.view.ShowMessage(msg)
	return msg, true
}

func (o *Orchestrator) Execute(ctx context.Context, st *session.State, script string) quantum.ScriptResult {
	res := o.remote.ExecuteScript(ctx, script, st.APIKey())
	if !res.OK() {
		o.log.Warn("script execution failed", zap.Stringer("outcome", res.Outcome), zap.Error(res.Err))
	}
	o.view.ShowScriptResult(res)
	return res
}

func (o *Orchestrator) ChangeKey(st *session.State, input string) session.KeyStatus {
	status := st.SetKey(input)
	o.view.ShowKeyStatus(status)
	return status
}

func (o *Orchestrator) Save(st *session.State) (string, error) {
	path, err := o.store.Save(st.Transcript().Messages())
	if err != nil {
		o.log.Error("save conversation", zap.Error(err))
		o.view.ShowError(err)
		return "", err
	}
	o.log.Info("conversation saved", zap.String("path", path), zap.Int("messages", st.Transcript().Len()))
	o.view.ShowSaved(path)
	return path, nil
}

// Load replaces the transcript with the named file. On failure the current
// transcript is left untouched.
func (o *Orchestrator) Load(st *session.State, name string) error {
	path, msgs, err := o.read(name)
	if err != nil {
		o.log.Error("load conversation", zap.String("name", name), zap.Error(err))
		o.view.ShowError(err)
		return err
	}
	st.Transcript().Replace(msgs)
	o.log.Info("conversation loaded", zap.String("path", path), zap.Int("messages", len(msgs)))
	o.view.ShowTranscript(st.Transcript().Messages())
	o.view.ShowLoaded(path)
	return nil
}

func (o *Orchestrator) read(name string) (string, []history.Message, error) {
	path, err := o.store.Resolve(name)
	if err != nil {
		return "", nil, err
	}
	msgs, err := o.store.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, msgs, nil
}

func (o *Orchestrator) Conversations() ([]string, error) {
	names, err := o.store.List()
	if err != nil {
		o.log.Error("list conversations", zap.Error(err))
		return nil, err
	}
	return names, nil
}
