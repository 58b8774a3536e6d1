package quantum

import (
	"encoding/json"
	"time"
)

const (
	DefaultChatURL        = "http://142.117.62.233:3001/chat"
	DefaultExecuteURL     = "http://142.117.62.233:3001/execute"
	DefaultChatTimeout    = 90 * time.Second
	DefaultExecuteTimeout = 30 * time.Second
)

// User-facing texts returned in place of a reply.
const (
	MissingKeyText   = "Please enter your API key in the sidebar 🔑"
	InvalidKeyText   = "Invalid API key format. Key must start with 'oneness_' 🚫"
	UnauthorizedText = "Invalid or expired API key 🔒"
	RateLimitedText  = "Too many requests. Please wait a moment and try again ⏳"
	NoResponseText   = "No response from Quantum X. Please try again 🤖"
)

// Outcome tags the result of a remote call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeMissingKey
	OutcomeInvalidKey
	OutcomeUnauthorized
	OutcomeRateLimited
	OutcomeEmpty
	OutcomeTransport
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeMissingKey:
		return "missing_key"
	case OutcomeInvalidKey:
		return "invalid_key"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Local reports outcomes decided before any request was sent.
func (o Outcome) Local() bool { return o == OutcomeMissingKey || o == OutcomeInvalidKey }

// ChatReply is what the chat endpoint produced for one message. Text is
// always displayable, whatever the outcome.
type ChatReply struct {
	Outcome Outcome
	Text    string
	Err     error
}

func (r ChatReply) OK() bool { return r.Outcome == OutcomeOK }

// ScriptResult is either the remote JSON payload, passed through untouched,
// or a local error message.
type ScriptResult struct {
	Outcome Outcome
	Payload json.RawMessage
	Message string
	Err     error
}

func (r ScriptResult) OK() bool { return r.Outcome == OutcomeOK }

type errorRecord struct {
	Error string `json:"error"`
}

// JSON renders the result the way it is shown to the user: the payload
// verbatim, or an {"error": ...} record.
func (r ScriptResult) JSON() json.RawMessage {
	if r.OK() {
		return r.Payload
	}
	b, _ := json.Marshal(errorRecord{Error: r.Message})
	return b
}

type chatRequest struct {
	Message string `json:"message"`
	APIKey  string `json:"api_key"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type executeRequest struct {
	QuantumScript string `json:"quantum_script"`
	APIKey        string `json:"api_key"`
}
