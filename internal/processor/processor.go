package processor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mkondo/kikitori/internal/audio"
	"github.com/mkondo/kikitori/internal/cli"
	"github.com/mkondo/kikitori/internal/image"
	"github.com/mkondo/kikitori/internal/models"
	"github.com/mkondo/kikitori/internal/pwa"
	"github.com/mkondo/kikitori/internal/review"
	"github.com/mkondo/kikitori/internal/sentence"
	"github.com/mkondo/kikitori/internal/serve"
	"github.com/mkondo/kikitori/internal/vocab"
	"github.com/mkondo/kikitori/internal/wanikani"
)

// Processor runs the pipeline stages against the configured data and
// page directories.
type Processor struct {
	flags *cli.Flags
}

// NewProcessor creates a new pipeline processor
func NewProcessor(flags *cli.Flags) *Processor {
	return &Processor{flags: flags}
}

func (p *Processor) vocabPath() string {
	return filepath.Join(p.flags.DataDir, "vocab.json")
}

func (p *Processor) sentencesPath() string {
	return filepath.Join(p.flags.DataDir, "sentences.json")
}

// Fetch pulls actively learned vocabulary from WaniKani and saves it
// for the sentence stage.
func (p *Processor) Fetch(ctx context.Context) error {
	key := cli.GetWaniKaniKey()
	if key == "" {
		return fmt.Errorf("WANIKANI_API_KEY is not set")
	}

	client := wanikani.NewClient(wanikani.Config{APIKey: key})

	fmt.Println("Fetching vocabulary from WaniKani...")
	words, err := client.FetchVocabulary(ctx, func(count int) {
		fmt.Printf("  %d assignments so far...\n", count)
	})
	if err != nil {
		return fmt.Errorf("failed to fetch vocabulary: %w", err)
	}

	if err := vocab.Save(p.vocabPath(), words); err != nil {
		return fmt.Errorf("failed to save vocabulary: %w", err)
	}

	fmt.Printf("Saved %d words to %s\n", len(words), p.vocabPath())
	return nil
}

// GenerateSentences runs the LLM sentence stage over the fetched
// vocabulary.
func (p *Processor) GenerateSentences(ctx context.Context) error {
	words, err := vocab.Load(p.vocabPath())
	if err != nil {
		return fmt.Errorf("failed to load vocabulary (run fetch first): %w", err)
	}

	config := sentence.DefaultProviderConfig()
	config.Provider = p.flags.SentenceProvider
	config.OpenAIKey = cli.GetOpenAIKey()
	config.BaseURL = p.flags.BaseURL
	config.GeminiKey = cli.GetGeminiKey()
	if p.flags.SentenceModel != "" {
		config.OpenAIModel = p.flags.SentenceModel
		if config.Provider == "gemini" {
			config.GeminiModel = p.flags.SentenceModel
		}
	}

	provider, err := sentence.NewProvider(config)
	if err != nil {
		return err
	}

	generator := sentence.NewGenerator(provider, sentence.GeneratorOptions{
		OutputPath: p.sentencesPath(),
		Limit:      p.flags.Limit,
	})
	_, err = generator.Generate(ctx, words)
	return err
}

// GenerateAudio narrates the generated sentences into the page's audio
// directory and writes the manifest.
func (p *Processor) GenerateAudio(ctx context.Context) error {
	groups, err := sentence.Load(p.sentencesPath())
	if err != nil {
		return fmt.Errorf("failed to load sentences (run sentences first): %w", err)
	}

	config := audio.DefaultProviderConfig()
	config.Provider = p.flags.AudioProvider
	config.OutputFormat = p.flags.AudioFormat
	config.OpenAIKey = cli.GetOpenAIKey()
	config.OpenAIModel = p.flags.OpenAIModel
	config.OpenAIVoice = p.flags.OpenAIVoice
	config.OpenAISpeed = p.flags.OpenAISpeed
	if p.flags.OpenAIInstruction != "" {
		config.OpenAIInstruction = p.flags.OpenAIInstruction
	}
	config.VoicevoxURL = p.flags.VoicevoxURL
	config.VoicevoxSpeaker = p.flags.VoicevoxSpeaker

	provider, err := audio.NewProvider(config)
	if err != nil {
		return err
	}

	if p.flags.AudioFallback != "" {
		fallbackConfig := *config
		fallbackConfig.Provider = p.flags.AudioFallback
		fallback, err := audio.NewProvider(&fallbackConfig)
		if err != nil {
			return fmt.Errorf("failed to create fallback provider: %w", err)
		}
		provider = audio.NewProviderWithFallback(provider, fallback)
	}

	narrator := audio.NewNarrator(provider, audio.NarratorOptions{
		OutputDir: filepath.Join(p.flags.PWADir, "audio"),
		Format:    p.flags.AudioFormat,
		Limit:     p.flags.Limit,
		Delay:     time.Duration(p.flags.AudioDelay * float64(time.Second)),
	})

	_, err = narrator.NarrateAll(ctx, groups)
	return err
}

// GenerateImages illustrates the generated sentences into the page's
// image directory and records the references in the sentence data.
func (p *Processor) GenerateImages(ctx context.Context) error {
	key := cli.GetOpenAIKey()
	if key == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}

	client := image.NewOpenAIClient(&image.OpenAIConfig{
		APIKey: key,
		Model:  p.flags.ImageModel,
		Size:   p.flags.ImageSize,
	})

	illustrator := image.NewIllustrator(client, image.IllustratorOptions{
		SentencesPath: p.sentencesPath(),
		OutputDir:     filepath.Join(p.flags.PWADir, "images"),
		Limit:         p.flags.Limit,
	})
	return illustrator.IllustrateAll(ctx)
}

// ListModels prints the OpenAI models usable for the pipeline stages,
// marking the ones the stages are currently configured with.
func (p *Processor) ListModels() error {
	lister := models.NewLister(cli.GetOpenAIKey())
	return lister.ListAvailableModels(models.StageModels{
		Sentence: p.flags.SentenceModel,
		Audio:    p.flags.OpenAIModel,
		Image:    p.flags.ImageModel,
	})
}

// Sync copies the sentence data into the page directory.
func (p *Processor) Sync() error {
	result, err := pwa.SyncSentences(p.sentencesPath(), p.flags.PWADir)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d words (%d sentences) to %s\n", result.Words, result.Sentences, result.Dest)
	return nil
}

// PushReviews submits queued "too easy" markings back to WaniKani.
func (p *Processor) PushReviews(ctx context.Context) error {
	key := cli.GetWaniKaniKey()
	if key == "" {
		return fmt.Errorf("WANIKANI_API_KEY is not set")
	}

	client := wanikani.NewClient(wanikani.Config{APIKey: key})

	archiveDir := filepath.Join(p.flags.DataDir, "synced_reviews")
	pusher := review.NewPusher(client, p.flags.PWADir, archiveDir)

	result, err := pusher.Push(ctx)
	if err != nil {
		return err
	}
	if result.Pushed > 0 || result.Skipped > 0 {
		fmt.Printf("Pushed %d reviews (%d skipped)\n", result.Pushed, result.Skipped)
	}
	return nil
}

// Serve hosts the trainer page locally with the offline cache in
// front of it until ctx is cancelled.
func (p *Processor) Serve(ctx context.Context) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	srv, err := serve.New(serve.Options{
		Addr:      p.flags.Addr,
		Dir:       p.flags.PWADir,
		Version:   p.flags.CacheVersion,
		CacheFile: p.flags.CacheFile,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
