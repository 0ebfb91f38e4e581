package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mkondo/kikitori/internal"
	"github.com/mkondo/kikitori/internal/sentence"
)

// NarratorOptions configures a narration run.
type NarratorOptions struct {
	OutputDir string        // audio output directory (also holds manifest.json)
	Format    string        // output format, "mp3" by default
	Limit     int           // narrate at most this many words (0 = all)
	Delay     time.Duration // pause between TTS calls
}

// Narrator generates one audio file per practice sentence and writes
// the manifest the offline cache controller discovers at install time.
type Narrator struct {
	provider Provider
	options  NarratorOptions
}

// NewNarrator creates a narrator using the given TTS provider.
func NewNarrator(provider Provider, options NarratorOptions) *Narrator {
	if options.Format == "" {
		options.Format = "mp3"
	}
	return &Narrator{provider: provider, options: options}
}

// NarrateAll generates audio for every sentence of every word and
// writes the manifest. Files that already exist are kept and listed in
// the manifest without a new TTS call, so a rerun only pays for new
// sentences. A failed sentence is logged and skipped.
func (n *Narrator) NarrateAll(ctx context.Context, groups []sentence.WordSentences) ([]ManifestEntry, error) {
	if err := n.provider.IsAvailable(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(n.options.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if n.options.Limit > 0 && len(groups) > n.options.Limit {
		groups = groups[:n.options.Limit]
	}

	total := 0
	for _, g := range groups {
		total += len(g.Sentences)
	}

	var entries []ManifestEntry
	generated, skipped := 0, 0

	for _, group := range groups {
		fmt.Printf("\n%s (%s)\n", group.Word, group.Reading)

		for i, s := range group.Sentences {
			if err := ctx.Err(); err != nil {
				return entries, err
			}

			filename := fmt.Sprintf("%s_%d.%s", internal.SanitizeFilename(group.Word), i, n.options.Format)
			outputPath := filepath.Join(n.options.OutputDir, filename)
			entry := ManifestEntry{Word: group.Word, SentenceIndex: i, File: filename}

			if _, err := os.Stat(outputPath); err == nil {
				fmt.Printf("  [%d/%d] Already narrated, skipping\n", generated+skipped+1, total)
				entries = append(entries, entry)
				skipped++
				continue
			}

			cleaned := CleanText(s.Japanese)
			if cleaned == "" {
				fmt.Printf("  Skipping empty text\n")
				continue
			}

			fmt.Printf("  [%d/%d] Generating audio...\n", generated+skipped+1, total)
			if err := n.provider.GenerateAudio(ctx, cleaned, outputPath); err != nil {
				fmt.Fprintf(os.Stderr, "  Failed to generate audio: %v\n", err)
				continue
			}

			entries = append(entries, entry)
			generated++

			if n.options.Delay > 0 {
				time.Sleep(n.options.Delay)
			}
		}
	}

	manifestPath := filepath.Join(n.options.OutputDir, "manifest.json")
	if err := WriteManifest(manifestPath, entries); err != nil {
		return entries, err
	}

	fmt.Printf("\n\nDone! Generated %d audio files (%d already present)\n", generated, skipped)
	fmt.Printf("Output: %s\n", n.options.OutputDir)
	fmt.Printf("Manifest: %s\n", manifestPath)

	return entries, nil
}
