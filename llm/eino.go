package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/josephgoksu/TaskTalk/types"
)

// DefaultOllamaURL is where a local Ollama daemon listens.
const DefaultOllamaURL = "http://localhost:11434"

// einoProvider adapts an Eino chat model to the Provider interface.
type einoProvider struct {
	model       model.BaseChatModel
	temperature float32
	maxTokens   int
}

// newEinoProvider creates a chat model for the configured provider and wraps
// it so callers see the same one-shot Complete surface as the Groq client.
func newEinoProvider(ctx context.Context, cfg types.LLMConfig) (Provider, error) {
	chatModel, err := newEinoChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &einoProvider{
		model:       chatModel,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxOutputTokens,
	}, nil
}

func newEinoChatModel(ctx context.Context, cfg types.LLMConfig) (model.BaseChatModel, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			Model:   cfg.ModelName,
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		})

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   cfg.ModelName,
		})

	default:
		return nil, fmt.Errorf("unsupported eino chat provider: %s", cfg.Provider)
	}
}

// Complete sends the prompt pair through the Eino chat model.
func (p *einoProvider) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userMessage),
	}

	opts := []model.Option{model.WithTemperature(p.temperature)}
	if p.maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(p.maxTokens))
	}

	resp, err := p.model.Generate(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("chat model generate: %w", err)
	}
	return resp.Content, nil
}
