package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	groqChatCompletionsURL = "https://api.groq.com/openai/v1/chat/completions"

	// DefaultGroqModel favors a large instruction-following model; the
	// action-extraction prompt needs format discipline more than speed.
	DefaultGroqModel = "llama-3.3-70b-versatile"
)

// GroqProvider implements Provider against Groq's OpenAI-compatible
// chat-completions endpoint.
type GroqProvider struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	debug       bool
}

// GroqOption customizes a GroqProvider.
type GroqOption func(*GroqProvider)

// WithGroqBaseURL overrides the endpoint, mainly for tests.
func WithGroqBaseURL(url string) GroqOption {
	return func(p *GroqProvider) { p.baseURL = url }
}

// WithGroqDebug enables request/response logging to stdout.
func WithGroqDebug(debug bool) GroqOption {
	return func(p *GroqProvider) { p.debug = debug }
}

// NewGroqProvider creates a provider with fixed low-temperature sampling and
// a bounded output length.
func NewGroqProvider(apiKey, model string, temperature float64, maxTokens int, timeout time.Duration, opts ...GroqOption) *GroqProvider {
	if model == "" {
		model = DefaultGroqModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	p := &GroqProvider{
		apiKey:      apiKey,
		model:       model,
		baseURL:     groqChatCompletionsURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// groqRequestPayload defines the structure for the chat-completions request.
type groqRequestPayload struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// groqMessage defines a message in the conversation.
type groqMessage struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// groqResponsePayload defines the structure for the chat-completions response.
type groqResponsePayload struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []groqChoice `json:"choices"`
	Usage   groqUsage    `json:"usage"`
}

type groqChoice struct {
	Index        int         `json:"index"`
	Message      groqMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type groqUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends the prompt pair and returns the raw reply text.
func (p *GroqProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("groq API key is not set")
	}

	payload := groqRequestPayload{
		Model: p.model,
		Messages: []groqMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: p.timeout}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "context deadline exceeded") || strings.Contains(err.Error(), "Client.Timeout exceeded") {
			return "", fmt.Errorf("groq API request timed out after %v", p.timeout)
		}
		return "", fmt.Errorf("failed to call groq API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)
	if p.debug {
		fmt.Printf("[LLM] Groq %s in %v (status %s, bytes %d)\n", p.model, time.Since(start), resp.Status, len(raw))
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("groq API error (%s): %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var parsed groqResponsePayload
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse groq API response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("groq API returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
