package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"quantum-chat/internal/history"
	"quantum-chat/internal/quantum"
	"quantum-chat/internal/session"
)

// Orchestrator callbacks arrive on command goroutines. They are turned into
// messages so the model is only ever touched inside Update.
type (
	messageMsg    struct{ msg history.Message }
	transcriptMsg struct{ msgs []history.Message }
	waitingMsg    struct{ waiting bool }
	keyStatusMsg  struct{ status session.KeyStatus }
	resultMsg     struct{ res quantum.ScriptResult }
	savedMsg      struct{ path string }
	loadedMsg     struct{ path string }
	errorMsg      struct{ err error }

	conversationsMsg struct {
		names []string
		err   error
	}
	flowDoneMsg struct{}
)

// sink implements chat.Renderer. Events are queued in order and pumped into
// the program by a single goroutine, so emitting never waits on the update
// loop and may happen from inside Update itself.
type sink struct {
	events chan tea.Msg
}

func newSink() *sink {
	return &sink{events: make(chan tea.Msg, 256)}
}

func (s *sink) emit(msg tea.Msg) { s.events <- msg }

// pump forwards queued events to send until ctx is done.
func (s *sink) pump(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.events:
			send(msg)
		}
	}
}

func (s *sink) ShowMessage(msg history.Message)           { s.emit(messageMsg{msg}) }
func (s *sink) ShowTranscript(msgs []history.Message)     { s.emit(transcriptMsg{msgs}) }
func (s *sink) SetWaiting(waiting bool)                   { s.emit(waitingMsg{waiting}) }
func (s *sink) ShowKeyStatus(status session.KeyStatus)    { s.emit(keyStatusMsg{status}) }
func (s *sink) ShowScriptResult(res quantum.ScriptResult) { s.emit(resultMsg{res}) }
func (s *sink) ShowSaved(path string)                     { s.emit(savedMsg{path}) }
func (s *sink) ShowLoaded(path string)                    { s.emit(loadedMsg{path}) }
func (s *sink) ShowError(err error)                       { s.emit(errorMsg{err}) }
