package sentence

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/mkondo/kikitori/internal/vocab"
)

// OpenAIProvider implements Provider for OpenAI chat completions and
// any OpenAI-compatible endpoint (Ollama, LM Studio) via BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI-compatible sentence provider
func NewOpenAIProvider(config *Config) (Provider, error) {
	if config.OpenAIKey == "" && config.BaseURL == "" {
		return nil, fmt.Errorf("OpenAI API key is required (or set a local base URL)")
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.BaseURL != "" {
		// Local endpoints follow the OpenAI wire format but usually
		// ignore the key.
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/") + "/v1"
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// GenerateSentences generates practice sentences via chat completion
func (p *OpenAIProvider) GenerateSentences(ctx context.Context, word vocab.Word) ([]Sentence, error) {
	req := openai.ChatCompletionRequest{
		Model: p.config.OpenAIModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(word),
			},
		},
		MaxTokens:   500,
		Temperature: 0.7,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response returned for %s", word.Characters)
	}

	return parseResponse(resp.Choices[0].Message.Content), nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	if p.config.BaseURL != "" {
		return fmt.Sprintf("openai-compatible (%s)", p.config.BaseURL)
	}
	return "openai"
}

// IsAvailable checks if the provider is configured
func (p *OpenAIProvider) IsAvailable() error {
	if p.config.OpenAIKey == "" && p.config.BaseURL == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}
