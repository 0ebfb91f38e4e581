// Package image generates illustrations for practice sentences so the
// trainer can show a visual hint before revealing the translation.
package image

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkondo/kikitori/internal"
	"github.com/mkondo/kikitori/internal/sentence"
)

// Generator produces one illustration file per sentence.
type Generator interface {
	GenerateIllustration(ctx context.Context, japanese, english, outputPath string) error
	Name() string
}

// IllustratorOptions configures an illustration run.
type IllustratorOptions struct {
	SentencesPath string // sentences.json to read and update
	OutputDir     string // image output directory inside the page
	Limit         int    // illustrate at most this many words (0 = all)
}

// Illustrator walks the sentence data, generates missing images and
// records each file in the sentence's image field.
type Illustrator struct {
	generator Generator
	options   IllustratorOptions
}

// NewIllustrator creates an illustrator using the given generator.
func NewIllustrator(generator Generator, options IllustratorOptions) *Illustrator {
	return &Illustrator{generator: generator, options: options}
}

// IllustrateAll generates an image for every sentence that does not
// already have one and saves the updated sentence data. A failed
// sentence is logged and skipped.
func (il *Illustrator) IllustrateAll(ctx context.Context) error {
	groups, err := sentence.Load(il.options.SentencesPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(il.options.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}

	limit := len(groups)
	if il.options.Limit > 0 && il.options.Limit < limit {
		limit = il.options.Limit
	}

	imageDir := filepath.Base(il.options.OutputDir)
	generated := 0

	// The whole file is rewritten at the end, so only iterate the
	// limited prefix but keep every group for the save.
	for gi := range groups[:limit] {
		group := &groups[gi]
		fmt.Printf("\n%s (%s)\n", group.Word, group.Reading)

		for si := range group.Sentences {
			if err := ctx.Err(); err != nil {
				return err
			}

			s := &group.Sentences[si]
			filename := fmt.Sprintf("%s_%d.png", internal.SanitizeFilename(group.Word), si)
			outputPath := filepath.Join(il.options.OutputDir, filename)
			ref := imageDir + "/" + filename

			if _, err := os.Stat(outputPath); err == nil {
				fmt.Printf("  Already illustrated, skipping\n")
				s.Image = ref
				continue
			}

			fmt.Printf("  Generating illustration...\n")
			if err := il.generator.GenerateIllustration(ctx, s.Japanese, s.English, outputPath); err != nil {
				fmt.Fprintf(os.Stderr, "  Failed to generate illustration: %v\n", err)
				continue
			}

			s.Image = ref
			generated++
		}
	}

	if err := sentence.Save(il.options.SentencesPath, groups); err != nil {
		return err
	}

	fmt.Printf("\nDone! Generated %d illustrations\n", generated)
	return nil
}
