package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkondo/kikitori/internal/sentence"
)

func testGroups() []sentence.WordSentences {
	return []sentence.WordSentences{
		{
			Word:    "病院",
			Reading: "びょういん",
			Sentences: []sentence.Sentence{
				{Japanese: "ゾンビに噛(か)まれたので、急いで病院に行きました！"},
				{Japanese: "この病院の院長は宇宙人です。"},
			},
		},
		{
			Word:      "学校",
			Reading:   "がっこう",
			Sentences: []sentence.Sentence{{Japanese: "学校が爆発した！"}},
		},
	}
}

func TestNarrateAllGeneratesFilesAndManifest(t *testing.T) {
	outputDir := t.TempDir()
	narrator := NewNarrator(&fileWritingProvider{dir: outputDir}, NarratorOptions{OutputDir: outputDir})

	entries, err := narrator.NarrateAll(context.Background(), testGroups())
	if err != nil {
		t.Fatalf("NarrateAll failed: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("Expected 3 manifest entries, got %d", len(entries))
	}
	if entries[0].File != "病院_0.mp3" || entries[0].SentenceIndex != 0 {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[2].Word != "学校" {
		t.Errorf("Expected third entry for 学校, got %+v", entries[2])
	}

	loaded, err := LoadManifest(filepath.Join(outputDir, "manifest.json"))
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if len(loaded) != 3 {
		t.Errorf("Expected manifest on disk to list 3 files, got %d", len(loaded))
	}
}

func TestNarrateAllStripsFurigana(t *testing.T) {
	outputDir := t.TempDir()
	provider := &mockProvider{name: "mock"}
	narrator := NewNarrator(provider, NarratorOptions{OutputDir: outputDir})

	groups := []sentence.WordSentences{
		{Word: "病院", Sentences: []sentence.Sentence{{Japanese: "噛(か)まれた病院"}}},
	}
	if _, err := narrator.NarrateAll(context.Background(), groups); err != nil {
		t.Fatalf("NarrateAll failed: %v", err)
	}

	if provider.lastText != "噛まれた病院" {
		t.Errorf("Expected furigana stripped before TTS, got %q", provider.lastText)
	}
}

func TestNarrateAllSkipsExistingFiles(t *testing.T) {
	outputDir := t.TempDir()

	// The first sentence was narrated on a previous run.
	existing := filepath.Join(outputDir, "病院_0.mp3")
	if err := os.WriteFile(existing, []byte("old audio"), 0644); err != nil {
		t.Fatalf("Failed to seed existing file: %v", err)
	}

	provider := &mockProvider{name: "mock"}
	narrator := NewNarrator(provider, NarratorOptions{OutputDir: outputDir})

	groups := []sentence.WordSentences{
		{Word: "病院", Sentences: []sentence.Sentence{
			{Japanese: "古い文です。"},
			{Japanese: "新しい文です。"},
		}},
	}
	entries, err := narrator.NarrateAll(context.Background(), groups)
	if err != nil {
		t.Fatalf("NarrateAll failed: %v", err)
	}

	if provider.generateCalls != 1 {
		t.Errorf("Expected 1 TTS call for the new sentence, got %d", provider.generateCalls)
	}
	// Both files are still listed so the offline prefetch sees them.
	if len(entries) != 2 {
		t.Errorf("Expected 2 manifest entries, got %d", len(entries))
	}
}

func TestNarrateAllContinuesAfterFailure(t *testing.T) {
	outputDir := t.TempDir()
	provider := &mockProvider{name: "mock", generateErr: errors.New("TTS down")}
	narrator := NewNarrator(provider, NarratorOptions{OutputDir: outputDir})

	entries, err := narrator.NarrateAll(context.Background(), testGroups())
	if err != nil {
		t.Fatalf("NarrateAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no manifest entries when every sentence fails, got %d", len(entries))
	}
	if provider.generateCalls != 3 {
		t.Errorf("Expected the run to attempt every sentence, got %d calls", provider.generateCalls)
	}
}

func TestNarrateAllFailsWhenProviderUnavailable(t *testing.T) {
	provider := &mockProvider{name: "mock", availableErr: errors.New("no key")}
	narrator := NewNarrator(provider, NarratorOptions{OutputDir: t.TempDir()})

	if _, err := narrator.NarrateAll(context.Background(), testGroups()); err == nil {
		t.Error("Expected an error when the provider is unavailable")
	}
}

// fileWritingProvider creates the output file like a real TTS provider
// would, so skip-existing logic sees it on a second pass.
type fileWritingProvider struct {
	dir string
}

func (p *fileWritingProvider) GenerateAudio(ctx context.Context, text, outputFile string) error {
	return os.WriteFile(outputFile, []byte("audio for "+text), 0644)
}

func (p *fileWritingProvider) Name() string { return "filewriter" }

func (p *fileWritingProvider) IsAvailable() error { return nil }
