package image

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures image generation
type OpenAIConfig struct {
	APIKey  string
	Model   string // "dall-e-2" or "dall-e-3"
	Size    string // e.g. "512x512", "1024x1024"
	Quality string // "standard" or "hd" (dall-e-3 only)
	Style   string // "natural" or "vivid" (dall-e-3 only)
}

// OpenAIClient generates sentence illustrations via the OpenAI image API
type OpenAIClient struct {
	client  *openai.Client
	model   string
	size    string
	quality string
	style   string
}

// NewOpenAIClient creates a new OpenAI image generation client
func NewOpenAIClient(config *OpenAIConfig) *OpenAIClient {
	model := config.Model
	if model == "" {
		model = "dall-e-2"
	}
	size := config.Size
	if size == "" {
		size = "512x512"
	}

	return &OpenAIClient{
		client:  openai.NewClient(config.APIKey),
		model:   model,
		size:    size,
		quality: config.Quality,
		style:   config.Style,
	}
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return "openai"
}

// createScenePrompt builds the image prompt for a practice sentence.
// The English translation drives the scene so the model does not have
// to parse Japanese, and text is explicitly excluded since rendered
// captions would give the meaning away.
func (c *OpenAIClient) createScenePrompt(japanese, english string) string {
	return fmt.Sprintf(
		"A simple, clear illustration of this scene: %s. "+
			"Flat colors, minimal detail, suitable for a language learning flashcard. "+
			"Do not include any text, letters or captions in the image.",
		english)
}

// GenerateIllustration generates one illustration for a sentence and
// writes it to outputPath.
func (c *OpenAIClient) GenerateIllustration(ctx context.Context, japanese, english, outputPath string) error {
	req := openai.ImageRequest{
		Prompt:         c.createScenePrompt(japanese, english),
		Model:          c.model,
		Size:           c.size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}
	if c.quality != "" {
		req.Quality = c.quality
	}
	if c.style != "" {
		req.Style = c.style
	}

	resp, err := c.client.CreateImage(ctx, req)
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("image generation returned no data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return fmt.Errorf("failed to decode image data: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}
