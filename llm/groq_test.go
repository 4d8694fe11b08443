package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGroqProvider_Complete(t *testing.T) {
	var gotAuth string
	var gotPayload groqRequestPayload

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode request payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(groqResponsePayload{
			Choices: []groqChoice{
				{Message: groqMessage{Role: "assistant", Content: `Sure! {"type":"none"}`}},
			},
		})
	}))
	defer ts.Close()

	p := NewGroqProvider("test-key", "", 0.5, 800, time.Second, WithGroqBaseURL(ts.URL))

	reply, err := p.Complete(context.Background(), "system prompt", "user message")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != `Sure! {"type":"none"}` {
		t.Errorf("reply mismatch: got %q", reply)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization header mismatch: got %q", gotAuth)
	}
	if gotPayload.Model != DefaultGroqModel {
		t.Errorf("empty model should fall back to default: got %q", gotPayload.Model)
	}
	if gotPayload.Temperature != 0.5 {
		t.Errorf("Temperature mismatch: got %v", gotPayload.Temperature)
	}
	if gotPayload.MaxTokens != 800 {
		t.Errorf("MaxTokens mismatch: got %v", gotPayload.MaxTokens)
	}
	if len(gotPayload.Messages) != 2 {
		t.Fatalf("message count mismatch: got %d, want 2", len(gotPayload.Messages))
	}
	if gotPayload.Messages[0].Role != "system" || gotPayload.Messages[0].Content != "system prompt" {
		t.Errorf("system message mismatch: %+v", gotPayload.Messages[0])
	}
	if gotPayload.Messages[1].Role != "user" || gotPayload.Messages[1].Content != "user message" {
		t.Errorf("user message mismatch: %+v", gotPayload.Messages[1])
	}
}

func TestGroqProvider_MissingAPIKey(t *testing.T) {
	p := NewGroqProvider("", "", 0.5, 800, time.Second)

	if _, err := p.Complete(context.Background(), "s", "u"); err == nil {
		t.Error("expected error when API key is missing")
	}
}

func TestGroqProvider_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer ts.Close()

	p := NewGroqProvider("test-key", "", 0.5, 800, time.Second, WithGroqBaseURL(ts.URL))

	if _, err := p.Complete(context.Background(), "s", "u"); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestGroqProvider_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(groqResponsePayload{})
	}))
	defer ts.Close()

	p := NewGroqProvider("test-key", "", 0.5, 800, time.Second, WithGroqBaseURL(ts.URL))

	if _, err := p.Complete(context.Background(), "s", "u"); err == nil {
		t.Error("expected error when the response has no choices")
	}
}
