package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, content string, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, content)
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestSummarizer(t *testing.T, url string) *Summarizer {
	t.Helper()
	s, err := New(Options{APIKey: "test-key", BaseURL: url + "/", Timeout: 5 * time.Second, MaxRetries: 0})
	require.NoError(t, err)
	return s
}

func TestSummarizer_Summarize(t *testing.T) {
	srv, got := newTestServer(t, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-5-haiku-latest",
		"content": [{"type": "text", "text": "  Focused morning with high energy.  "}],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 10, "output_tokens": 8}
	}`, http.StatusOK)

	out, err := newTestSummarizer(t, srv.URL).Summarize(context.Background(), "coded from 9 to 12, felt great")
	require.NoError(t, err)
	assert.Equal(t, "Focused morning with high energy.", out)

	assert.Equal(t, DefaultModel, (*got)["model"])
	assert.EqualValues(t, DefaultMaxTokens, (*got)["max_tokens"])
	messages, ok := (*got)["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	assert.Contains(t, mustJSON(t, messages[0]), "coded from 9 to 12")
}

func TestSummarizer_EmptyResponse(t *testing.T) {
	srv, _ := newTestServer(t, `{"id":"msg_2","type":"message","role":"assistant","model":"m","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`, http.StatusOK)

	_, err := newTestSummarizer(t, srv.URL).Summarize(context.Background(), "log")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestSummarizer_APIError(t *testing.T) {
	srv, _ := newTestServer(t, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`, http.StatusBadRequest)

	_, err := newTestSummarizer(t, srv.URL).Summarize(context.Background(), "log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic api error")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	s, err := New(Options{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, s.opts.Model)
	assert.Equal(t, DefaultTimeout, s.opts.Timeout)

	_, err = s.Summarize(context.Background(), " ")
	assert.Error(t, err)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
