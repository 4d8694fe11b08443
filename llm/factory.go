package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/josephgoksu/TaskTalk/types"
)

// NewProvider creates the completion client selected by config. Groq uses
// the direct HTTP client; OpenAI and Ollama go through Eino chat models.
func NewProvider(ctx context.Context, cfg types.LLMConfig) (Provider, error) {
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	switch strings.ToLower(cfg.Provider) {
	case "groq":
		var opts []GroqOption
		if cfg.BaseURL != "" {
			opts = append(opts, WithGroqBaseURL(cfg.BaseURL))
		}
		if cfg.Debug {
			opts = append(opts, WithGroqDebug(true))
		}
		return NewGroqProvider(cfg.APIKey, cfg.ModelName, cfg.Temperature, cfg.MaxOutputTokens, timeout, opts...), nil

	case "openai", "ollama":
		return newEinoProvider(ctx, cfg)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: groq, openai, ollama)", cfg.Provider)
	}
}
