package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"quantum-chat/internal/chat"
	"quantum-chat/internal/history"
	"quantum-chat/internal/quantum"
	"quantum-chat/internal/session"
)

// printer renders orchestrator output for the one-shot subcommands.
type printer struct{ w io.Writer }

func newPrinter(w io.Writer) *printer { return &printer{w: w} }

func (p *printer) ShowMessage(msg history.Message) {
	// The user already typed the message on the command line.
	if msg.Role == history.RoleAssistant {
		fmt.Fprintln(p.w, msg.Content)
	}
}

func (p *printer) ShowTranscript(msgs []history.Message) {
	for _, m := range msgs {
		fmt.Fprintf(p.w, "%s: %s\n", m.Role, m.Content)
	}
}

func (p *printer) SetWaiting(bool) {}

func (p *printer) ShowKeyStatus(status session.KeyStatus) {
	if status == session.KeyInvalid {
		fmt.Fprintln(p.w, chat.KeyInvalidText)
	}
}

func (p *printer) ShowScriptResult(res quantum.ScriptResult) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, res.JSON(), "", "  "); err != nil {
		fmt.Fprintln(p.w, string(res.JSON()))
		return
	}
	fmt.Fprintln(p.w, buf.String())
}

func (p *printer) ShowSaved(path string) { fmt.Fprintln(p.w, chat.SavedText(path)) }

func (p *printer) ShowLoaded(string) {}

// ShowError is silent: the subcommand returns the same error to cobra.
func (p *printer) ShowError(error) {}
