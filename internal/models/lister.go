// Package models lists the models usable by each pipeline stage.
package models

import (
	"context"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mkondo/kikitori/internal/sentence"
)

// Pipeline stages a model can serve.
const (
	StageSentence = "sentence" // sentence generation (chat completions)
	StageAudio    = "audio"    // narration (text-to-speech)
	StageImage    = "image"    // illustration
)

// StageModels names the model configured for each stage so the listing
// can point out what the pipeline would actually use.
type StageModels struct {
	Sentence string
	Audio    string
	Image    string
}

// Lister prints the available OpenAI models grouped by pipeline stage
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister
func NewLister(apiKey string) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// newListerWithConfig lets tests point the client at a fake server.
func newListerWithConfig(apiKey string, config openai.ClientConfig) *Lister {
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// stageFor maps a model ID to the pipeline stage that could use it.
// Models that fit no stage return "".
func stageFor(modelID string) string {
	switch {
	case strings.Contains(modelID, "tts") || strings.Contains(modelID, "audio"):
		return StageAudio
	case strings.Contains(modelID, "dall-e") || strings.Contains(modelID, "image"):
		return StageImage
	case strings.Contains(modelID, "gpt") || strings.Contains(modelID, "chat"):
		return StageSentence
	default:
		return ""
	}
}

// categorize splits model IDs into sorted per-stage lists.
func categorize(ids []string) (chat, tts, image []string) {
	for _, id := range ids {
		switch stageFor(id) {
		case StageSentence:
			chat = append(chat, id)
		case StageAudio:
			tts = append(tts, id)
		case StageImage:
			image = append(image, id)
		}
	}
	sort.Strings(chat)
	sort.Strings(tts)
	sort.Strings(image)
	return chat, tts, image
}

// relevantChat trims a long chat listing down to the gpt-4 / gpt-3.5
// families that sentence generation actually targets.
func relevantChat(chat []string) (kept []string, trimmed int) {
	if len(chat) <= 10 {
		return chat, 0
	}
	for _, id := range chat {
		if strings.Contains(id, "gpt-4") || strings.Contains(id, "gpt-3.5") {
			kept = append(kept, id)
		}
	}
	return kept, len(chat) - len(kept)
}

// annotate marks the configured model in a listing, appending it when
// the API did not return it (e.g. a model served through --base-url).
func annotate(ids []string, configured string) []string {
	out := make([]string, 0, len(ids)+1)
	found := false
	for _, id := range ids {
		if id == configured {
			id += "  <- configured"
			found = true
		}
		out = append(out, id)
	}
	if configured != "" && !found {
		out = append(out, configured+"  <- configured (not in the API listing)")
	}
	return out
}

func printSection(title string, ids []string) {
	fmt.Printf("\n%s:\n", title)
	if len(ids) == 0 {
		fmt.Println("  none found")
		return
	}
	for _, id := range ids {
		fmt.Printf("  %s\n", id)
	}
}

// ListAvailableModels fetches the OpenAI model listing, groups it by
// pipeline stage and marks the models the stages are configured with.
func (l *Lister) ListAvailableModels(configured StageModels) error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .kikitori.yaml")
	}

	defaults := sentence.DefaultProviderConfig()
	if configured.Sentence == "" {
		configured.Sentence = defaults.OpenAIModel
	}

	resp, err := l.client.ListModels(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(resp.Models))
	for _, model := range resp.Models {
		ids = append(ids, model.ID)
	}
	chat, tts, image := categorize(ids)

	fmt.Println("Available OpenAI Models:")

	kept, trimmed := relevantChat(chat)
	printSection("Sentence generation (chat models)", annotate(kept, configured.Sentence))
	if trimmed > 0 {
		fmt.Printf("  ... and %d more chat models\n", trimmed)
	}

	printSection("Narration (text-to-speech models)", annotate(tts, configured.Audio))
	printSection("Illustration (image models)", annotate(image, configured.Image))

	// Gemini runs through its own API and never shows up in the
	// OpenAI listing, but it is the other sentence backend.
	fmt.Println("\nGemini (sentence generation, --sentence-provider gemini):")
	fmt.Printf("  %s  <- default, needs GEMINI_API_KEY\n", defaults.GeminiModel)

	return nil
}
