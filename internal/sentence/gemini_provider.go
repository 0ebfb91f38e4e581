package sentence

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/mkondo/kikitori/internal/vocab"
)

// GeminiProvider implements Provider using the Gemini API.
type GeminiProvider struct {
	config *Config

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGeminiProvider creates a new Gemini sentence provider
func NewGeminiProvider(config *Config) (Provider, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	return &GeminiProvider{config: config}, nil
}

// init lazily creates the API client on first use.
func (p *GeminiProvider) init(ctx context.Context) (*genai.Client, error) {
	p.once.Do(func() {
		p.client, p.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  p.config.GeminiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return p.client, p.initErr
}

// GenerateSentences generates practice sentences via Gemini
func (p *GeminiProvider) GenerateSentences(ctx context.Context, word vocab.Word) ([]Sentence, error) {
	client, err := p.init(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, p.config.GeminiModel, genai.Text(buildPrompt(word)), nil)
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("no response returned for %s", word.Characters)
	}
	return parseResponse(text), nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// IsAvailable checks if the provider is configured
func (p *GeminiProvider) IsAvailable() error {
	if p.config.GeminiKey == "" {
		return fmt.Errorf("Gemini API key not configured")
	}
	return nil
}
