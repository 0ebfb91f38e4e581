// Package sentence generates high-valence practice sentences for
// vocabulary words using an LLM.
package sentence

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkondo/kikitori/internal/vocab"
)

// Provider defines the interface for sentence generation backends.
type Provider interface {
	// GenerateSentences generates practice sentences for a word.
	GenerateSentences(ctx context.Context, word vocab.Word) ([]Sentence, error)

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for sentence providers
type Config struct {
	Provider string // Provider name: "openai" or "gemini"

	// OpenAI-compatible settings. BaseURL makes any compatible local
	// endpoint work (Ollama, LM Studio).
	OpenAIKey   string
	OpenAIModel string
	BaseURL     string

	// Gemini settings
	GeminiKey   string
	GeminiModel string
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    "openai",
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-2.0-flash",
	}
}

// NewProvider creates the appropriate sentence provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai":
		return NewOpenAIProvider(config)
	case "gemini":
		return NewGeminiProvider(config)
	default:
		return nil, fmt.Errorf("unknown sentence provider: %s", config.Provider)
	}
}

// buildPrompt asks for two sentences with strong emotional hooks.
// Boring textbook sentences do not stick; danger and absurdity do.
func buildPrompt(word vocab.Word) string {
	return fmt.Sprintf(`You are a Japanese language teacher using neuroscience-based learning. Create 2 example sentences using this vocabulary word.

**CORE RULE: HIGH VALENCE.**
Human memory prioritizes information associated with strong emotions, danger, absurdity, or humor.
DO NOT create boring, standard textbook sentences like "I went to the library."

Instead, use themes like:
- Danger / Urgency (e.g., zombies, explosions, running away)
- Absurdity / Surrealism (e.g., talking animals, flying sushi)
- Strong Emotion (e.g., intense love, furious anger, crushing despair)
- Social Taboo / Embarrassment

Word: %s
Reading: %s
Meaning: %s

Requirements:
1. Sentence 1: A situation involving **Danger or Urgency**.
2. Sentence 2: A situation involving **Absurdity or Humor**.
3. Use simple grammar (JLPT N5-N4 level).
4. Include furigana in parentheses for any kanji not in the target word.

Format your response EXACTLY like this:
SENTENCE1_JP: [Japanese sentence]
SENTENCE1_EN: [English translation]
SENTENCE2_JP: [Japanese sentence]
SENTENCE2_EN: [English translation]`, word.Characters, word.Reading, word.Meaning)
}

// parseResponse extracts the SENTENCEn_JP / SENTENCEn_EN line pairs
// from an LLM response. Unpaired or missing lines are dropped rather
// than treated as errors.
func parseResponse(response string) []Sentence {
	var sentences []Sentence
	var current Sentence

	flush := func() {
		if current.Japanese != "" {
			sentences = append(sentences, current)
		}
		current = Sentence{}
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SENTENCE1_JP:"):
			current.Japanese = strings.TrimSpace(strings.TrimPrefix(line, "SENTENCE1_JP:"))
		case strings.HasPrefix(line, "SENTENCE1_EN:"):
			current.English = strings.TrimSpace(strings.TrimPrefix(line, "SENTENCE1_EN:"))
			flush()
		case strings.HasPrefix(line, "SENTENCE2_JP:"):
			current.Japanese = strings.TrimSpace(strings.TrimPrefix(line, "SENTENCE2_JP:"))
		case strings.HasPrefix(line, "SENTENCE2_EN:"):
			current.English = strings.TrimSpace(strings.TrimPrefix(line, "SENTENCE2_EN:"))
			flush()
		}
	}
	return sentences
}
