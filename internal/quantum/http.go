package quantum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"quantum-chat/internal/auth"
)

type Options struct {
	ChatURL        string
	ExecuteURL     string
	ChatTimeout    time.Duration
	ExecuteTimeout time.Duration
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

type Client struct {
	http           *http.Client
	chatURL        string
	executeURL     string
	chatTimeout    time.Duration
	executeTimeout time.Duration
	log            *zap.Logger
}

func New(opts Options) *Client {
	c := &Client{
		http:           opts.HTTPClient,
		chatURL:        opts.ChatURL,
		executeURL:     opts.ExecuteURL,
		chatTimeout:    opts.ChatTimeout,
		executeTimeout: opts.ExecuteTimeout,
		log:            opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.chatURL == "" {
		c.chatURL = DefaultChatURL
	}
	if c.executeURL == "" {
		c.executeURL = DefaultExecuteURL
	}
	if c.chatTimeout <= 0 {
		c.chatTimeout = DefaultChatTimeout
	}
	if c.executeTimeout <= 0 {
		c.executeTimeout = DefaultExecuteTimeout
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

func keyOutcome(key string) (Outcome, string, bool) {
	switch err := auth.ValidateKey(key); {
	case errors.Is(err, auth.ErrMissingKey):
		return OutcomeMissingKey, MissingKeyText, false
	case err != nil:
		return OutcomeInvalidKey, InvalidKeyText, false
	}
	return OutcomeOK, "", true
}

// SendChatMessage forwards message to the chat endpoint. It never returns an
// error: every failure is folded into the reply text.
func (c *Client) SendChatMessage(ctx context.Context, message, apiKey string) ChatReply {
	if o, text, ok := keyOutcome(apiKey); !ok {
		return ChatReply{Outcome: o, Text: text}
	}

	start := time.Now()
	status, body, err := c.post(ctx, c.chatURL, c.chatTimeout, apiKey, chatRequest{Message: message, APIKey: apiKey})
	reply := chatReplyFor(status, body, err)
	c.log.Info("chat request",
		zap.String("outcome", reply.Outcome.String()),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(reply.Err),
	)
	return reply
}

func chatReplyFor(status int, body []byte, err error) ChatReply {
	if err != nil {
		return chatFault(err)
	}
	switch status {
	case http.StatusUnauthorized:
		return ChatReply{Outcome: OutcomeUnauthorized, Text: UnauthorizedText}
	case http.StatusTooManyRequests:
		return ChatReply{Outcome: OutcomeRateLimited, Text: RateLimitedText}
	}
	var resp *chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return chatFault(fmt.Errorf("decode response: %w", err))
	}
	if resp == nil {
		return chatFault(errors.New("decode response: null body"))
	}
	if resp.Response == "" {
		return ChatReply{Outcome: OutcomeEmpty, Text: NoResponseText}
	}
	return ChatReply{Outcome: OutcomeOK, Text: resp.Response}
}

func chatFault(err error) ChatReply {
	return ChatReply{
		Outcome: OutcomeTransport,
		Text:    fmt.Sprintf("Error connecting to Quantum X: %v 🚨", err),
		Err:     err,
	}
}

// ExecuteScript sends script to the execute endpoint and passes the JSON
// answer through without looking at its shape.
func (c *Client) ExecuteScript(ctx context.Context, script, apiKey string) ScriptResult {
	if o, text, ok := keyOutcome(apiKey); !ok {
		return ScriptResult{Outcome: o, Message: text}
	}

	start := time.Now()
	status, body, err := c.post(ctx, c.executeURL, c.executeTimeout, apiKey, executeRequest{QuantumScript: script, APIKey: apiKey})
	res := scriptResultFor(status, body, err)
	c.log.Info("execute request",
		zap.String("outcome", res.Outcome.String()),
		zap.Int("status", status),
		zap.Int("script_len", len(script)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(res.Err),
	)
	return res
}

func scriptResultFor(status int, body []byte, err error) ScriptResult {
	if err != nil {
		return scriptFault(err)
	}
	switch status {
	case http.StatusUnauthorized:
		return ScriptResult{Outcome: OutcomeUnauthorized, Message: UnauthorizedText}
	case http.StatusTooManyRequests:
		return ScriptResult{Outcome: OutcomeRateLimited, Message: RateLimitedText}
	}
	body = bytes.TrimSpace(body)
	if !json.Valid(body) {
		return scriptFault(errors.New("decode response: invalid JSON body"))
	}
	return ScriptResult{Outcome: OutcomeOK, Payload: json.RawMessage(body)}
}

func scriptFault(err error) ScriptResult {
	return ScriptResult{
		Outcome: OutcomeTransport,
		Message: fmt.Sprintf("Execution failed: %v", err),
		Err:     err,
	}
}

func (c *Client) post(ctx context.Context, url string, timeout time.Duration, apiKey string, payload any) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
