package sentence

import (
	"context"
	"fmt"
	"os"

	"github.com/mkondo/kikitori/internal/vocab"
)

// progressSaveInterval is how many words are processed between
// intermediate saves, so a long run interrupted halfway keeps its work.
const progressSaveInterval = 10

// GeneratorOptions configures a generation run.
type GeneratorOptions struct {
	OutputPath string // sentences.json destination
	Limit      int    // process at most this many words (0 = all)
}

// Generator runs sentence generation over a vocabulary list.
type Generator struct {
	provider Provider
	options  GeneratorOptions
}

// NewGenerator creates a generator using the given provider.
func NewGenerator(provider Provider, options GeneratorOptions) *Generator {
	return &Generator{provider: provider, options: options}
}

// Generate produces sentences for every word and writes the sentence
// data file. A failed word keeps an empty sentence list and the run
// continues; the trainer simply has nothing to play for it.
func (g *Generator) Generate(ctx context.Context, words []vocab.Word) ([]WordSentences, error) {
	if err := g.provider.IsAvailable(); err != nil {
		return nil, err
	}

	if g.options.Limit > 0 && len(words) > g.options.Limit {
		words = words[:g.options.Limit]
	}

	fmt.Printf("Generating sentences for %d words using %s...\n", len(words), g.provider.Name())

	results := make([]WordSentences, 0, len(words))
	for i, word := range words {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		fmt.Printf("[%d/%d] %s (%s)...\n", i+1, len(words), word.Characters, word.Reading)

		sentences, err := g.provider.GenerateSentences(ctx, word)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  Error generating for %s: %v\n", word.Characters, err)
			sentences = nil
		}

		results = append(results, WordSentences{
			SubjectID: word.ID,
			Word:      word.Characters,
			Reading:   word.Reading,
			Meaning:   word.Meaning,
			Level:     word.Level,
			Sentences: sentences,
		})

		if (i+1)%progressSaveInterval == 0 {
			if err := Save(g.options.OutputPath, results); err != nil {
				fmt.Fprintf(os.Stderr, "  Warning: progress save failed: %v\n", err)
			}
		}
	}

	if err := Save(g.options.OutputPath, results); err != nil {
		return results, err
	}

	total := 0
	for _, r := range results {
		total += len(r.Sentences)
	}
	fmt.Printf("\nDone! Generated %d sentences for %d words.\n", total, len(results))
	fmt.Printf("Saved to: %s\n", g.options.OutputPath)

	return results, nil
}
