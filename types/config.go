/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

import "time"

// AppConfig is the root configuration structure, mapped from viper.
type AppConfig struct {
	Verbose bool          `mapstructure:"verbose"`
	Config  string        `mapstructure:"config"`
	Project ProjectConfig `mapstructure:"project" validate:"required"`
	Data    DataConfig    `mapstructure:"data" validate:"required"`
	LLM     LLMConfig     `mapstructure:"llm" validate:"required"`
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	Auth    AuthConfig    `mapstructure:"auth" validate:"required"`
}

// ProjectConfig holds project-related settings.
type ProjectConfig struct {
	RootDir      string `mapstructure:"rootDir" validate:"required"`
	TemplatesDir string `mapstructure:"templatesDir" validate:"required"`
}

// DataConfig holds todo document storage configuration.
type DataConfig struct {
	File    string `mapstructure:"file" validate:"required"`
	Format  string `mapstructure:"format" validate:"required,oneof=json yaml"`
	Backend string `mapstructure:"backend" validate:"required,oneof=file sqlite"`
	// RetryAttempts bounds how often a failed store call is retried.
	RetryAttempts int `mapstructure:"retryAttempts" validate:"min=1,max=5"`
	// RetryBackoffMs is the base delay between attempts; it grows linearly.
	RetryBackoffMs int `mapstructure:"retryBackoffMs" validate:"min=0"`
}

// RetryBackoff returns the configured base delay as a duration.
func (d DataConfig) RetryBackoff() time.Duration {
	return time.Duration(d.RetryBackoffMs) * time.Millisecond
}

// LLMConfig holds configuration for the completion provider.
type LLMConfig struct {
	Provider  string `mapstructure:"provider" validate:"required,oneof=groq openai ollama"`
	ModelName string `mapstructure:"modelName" validate:"required,min=1"`
	APIKey    string `mapstructure:"apiKey" validate:"omitempty,min=1"`
	BaseURL   string `mapstructure:"baseURL" validate:"omitempty,url"`
	// MaxOutputTokens bounds reply length; the chat turn is an
	// action-extraction task, not open-ended generation.
	MaxOutputTokens int     `mapstructure:"maxOutputTokens" validate:"min=1"`
	Temperature     float64 `mapstructure:"temperature" validate:"min=0,max=2"`
	// RequestTimeoutSeconds controls the HTTP client timeout for LLM calls.
	RequestTimeoutSeconds int  `mapstructure:"requestTimeoutSeconds" validate:"omitempty,min=5,max=600"`
	Debug                 bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
	// Origins is the CORS allow-list.
	Origins []string `mapstructure:"origins"`
}

// AuthConfig identifies the locally authenticated user. The identity provider
// contract only requires an opaque, stable identifier.
type AuthConfig struct {
	UserID string `mapstructure:"userId" validate:"required,min=1"`
}
