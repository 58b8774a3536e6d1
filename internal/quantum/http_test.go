package quantum

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeEndpoint struct {
	srv    *httptest.Server
	hits   atomic.Int32
	last   atomic.Value // recordedRequest
	status int
	body   string
}

type recordedRequest struct {
	Path    string
	Method  string
	APIKey  string
	Type    string
	Payload map[string]any
}

func newFakeEndpoint(t *testing.T, status int, body string) *fakeEndpoint {
	t.Helper()
	f := &fakeEndpoint{status: status, body: body}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		_ = json.Unmarshal(raw, &payload)
		f.last.Store(recordedRequest{
			Path:    r.URL.Path,
			Method:  r.Method,
			APIKey:  r.Header.Get("X-API-Key"),
			Type:    r.Header.Get("Content-Type"),
			Payload: payload,
		})
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeEndpoint) client() *Client {
	return New(Options{
		ChatURL:    f.srv.URL + "/chat",
		ExecuteURL: f.srv.URL + "/execute",
		HTTPClient: f.srv.Client(),
	})
}

func (f *fakeEndpoint) request(t *testing.T) recordedRequest {
	t.Helper()
	r, ok := f.last.Load().(recordedRequest)
	require.True(t, ok, "no request recorded")
	return r
}

func TestNewDefaults(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, DefaultChatURL, c.chatURL)
	assert.Equal(t, DefaultExecuteURL, c.executeURL)
	assert.Equal(t, 90*time.Second, c.chatTimeout)
	assert.Equal(t, 30*time.Second, c.executeTimeout)
}

func TestBadKeysNeverReachNetwork(t *testing.T) {
	f := newFakeEndpoint(t, http.StatusOK, `{"response":"should not be seen"}`)
	c := f.client()

	cases := []struct {
		key     string
		outcome Outcome
		text    string
	}{
		{"", OutcomeMissingKey, MissingKeyText},
		{"bad_key", OutcomeInvalidKey, InvalidKeyText},
		{"ONENESS_abc", OutcomeInvalidKey, InvalidKeyText},
	}
	for _, tc := range cases {
		reply := c.SendChatMessage(context.Background(), "hello", tc.key)
		assert.Equal(t, tc.outcome, reply.Outcome)
		assert.Equal(t, tc.text, reply.Text)
		assert.True(t, reply.Outcome.Local())

		res := c.ExecuteScript(context.Background(), "print(1)", tc.key)
		assert.Equal(t, tc.outcome, res.Outcome)
		assert.JSONEq(t, `{"error":`+mustJSON(t, tc.text)+`}`, string(res.JSON()))
	}
	assert.Zero(t, f.hits.Load(), "no request may be sent for a bad key")
}

func TestSendChatMessage_Success(t *testing.T) {
	f := newFakeEndpoint(t, http.StatusOK, `{"response":"hi there"}`)

	reply := f.client().SendChatMessage(context.Background(), "hello", "oneness_abc")

	require.True(t, reply.OK(), "reply: %+v", reply)
	assert.Equal(t, "hi there", reply.Text)

	req := f.request(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/chat", req.Path)
	assert.Equal(t, "oneness_abc", req.APIKey)
	assert.Equal(t, "application/json", req.Type)
	assert.Equal(t, map[string]any{"message": "hello", "api_key": "oneness_abc"}, req.Payload)
}

func TestSendChatMessage_StatusMapping(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		outcome Outcome
		text    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"response":"ignored"}`, OutcomeUnauthorized, UnauthorizedText},
		{"unauthorized empty body", http.StatusUnauthorized, ``, OutcomeUnauthorized, UnauthorizedText},
		{"rate limited", http.StatusTooManyRequests, `not json`, OutcomeRateLimited, RateLimitedText},
		{"missing field", http.StatusOK, `{}`, OutcomeEmpty, NoResponseText},
		{"empty field", http.StatusOK, `{"response":""}`, OutcomeEmpty, NoResponseText},
		{"null field", http.StatusOK, `{"response":null}`, OutcomeEmpty, NoResponseText},
		{"server error with reply", http.StatusInternalServerError, `{"response":"degraded"}`, OutcomeOK, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeEndpoint(t, tc.status, tc.body)
			reply := f.client().SendChatMessage(context.Background(), "x", "oneness_abc")
			assert.Equal(t, tc.outcome, reply.Outcome)
			assert.Equal(t, tc.text, reply.Text)
			assert.NoError(t, reply.Err)
		})
	}
}

func TestSendChatMessage_MalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"html":   `<html>oops</html>`,
		"null":   `null`,
		"array":  `["hi"]`,
		"number": `{"response": 42}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newFakeEndpoint(t, http.StatusOK, body)

			reply := f.client().SendChatMessage(context.Background(), "x", "oneness_abc")

			assert.Equal(t, OutcomeTransport, reply.Outcome)
			assert.Error(t, reply.Err)
			assert.True(t, strings.HasPrefix(reply.Text, "Error connecting to Quantum X: "), reply.Text)
			assert.Contains(t, reply.Text, "decode response")
		})
	}
}

func TestSendChatMessage_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Options{ChatURL: url + "/chat", HTTPClient: &http.Client{}})
	reply := c.SendChatMessage(context.Background(), "x", "oneness_abc")

	assert.Equal(t, OutcomeTransport, reply.Outcome)
	assert.Error(t, reply.Err)
	assert.Contains(t, reply.Text, "Error connecting to Quantum X")
}

func TestSendChatMessage_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.ReadAll(r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := New(Options{ChatURL: srv.URL, ChatTimeout: 50 * time.Millisecond, HTTPClient: srv.Client()})
	reply := c.SendChatMessage(context.Background(), "x", "oneness_abc")

	assert.Equal(t, OutcomeTransport, reply.Outcome)
	assert.ErrorIs(t, reply.Err, context.DeadlineExceeded)
}

func TestExecuteScript_PassThrough(t *testing.T) {
	body := `{"counts": {"00": 512, "11": 512}, "shots": 1024, "extra": [1, "two", null]}`
	f := newFakeEndpoint(t, http.StatusOK, body)

	res := f.client().ExecuteScript(context.Background(), "cirq.Circuit()", "oneness_abc")

	require.True(t, res.OK(), "result: %+v", res)
	assert.JSONEq(t, body, string(res.JSON()))

	req := f.request(t)
	assert.Equal(t, "/execute", req.Path)
	assert.Equal(t, "oneness_abc", req.APIKey)
	assert.Equal(t, map[string]any{"quantum_script": "cirq.Circuit()", "api_key": "oneness_abc"}, req.Payload)
}

func TestExecuteScript_NonObjectPayload(t *testing.T) {
	f := newFakeEndpoint(t, http.StatusOK, `[1,2,3]`)

	res := f.client().ExecuteScript(context.Background(), "", "oneness_abc")

	require.True(t, res.OK())
	assert.JSONEq(t, `[1,2,3]`, string(res.JSON()))
}

func TestExecuteScript_StatusMapping(t *testing.T) {
	cases := []struct {
		status  int
		outcome Outcome
		text    string
	}{
		{http.StatusUnauthorized, OutcomeUnauthorized, UnauthorizedText},
		{http.StatusTooManyRequests, OutcomeRateLimited, RateLimitedText},
	}
	for _, tc := range cases {
		f := newFakeEndpoint(t, tc.status, `{"result":"ignored"}`)
		res := f.client().ExecuteScript(context.Background(), "s", "oneness_abc")
		assert.Equal(t, tc.outcome, res.Outcome)
		assert.JSONEq(t, `{"error":`+mustJSON(t, tc.text)+`}`, string(res.JSON()))
	}
}

func TestExecuteScript_MalformedBody(t *testing.T) {
	f := newFakeEndpoint(t, http.StatusOK, `Internal Server Error`)

	res := f.client().ExecuteScript(context.Background(), "s", "oneness_abc")

	assert.Equal(t, OutcomeTransport, res.Outcome)
	assert.True(t, strings.HasPrefix(res.Message, "Execution failed: "), res.Message)

	var rec map[string]string
	require.NoError(t, json.Unmarshal(res.JSON(), &rec))
	assert.Equal(t, res.Message, rec["error"])
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ok", OutcomeOK.String())
	assert.Equal(t, "rate_limited", OutcomeRateLimited.String())
	assert.Equal(t, "unknown", Outcome(99).String())
	assert.False(t, OutcomeUnauthorized.Local())
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}
