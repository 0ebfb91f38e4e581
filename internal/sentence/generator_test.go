package sentence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mkondo/kikitori/internal/vocab"
)

// mockProvider implements Provider for testing
type mockProvider struct {
	sentences     []Sentence
	generateErr   error
	failFor       string
	availableErr  error
	generateCalls int
}

func (m *mockProvider) GenerateSentences(ctx context.Context, word vocab.Word) ([]Sentence, error) {
	m.generateCalls++
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	if m.failFor != "" && word.Characters == m.failFor {
		return nil, errors.New("model refused")
	}
	return m.sentences, nil
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) IsAvailable() error { return m.availableErr }

func TestGenerateWritesSentenceFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "data", "sentences.json")
	provider := &mockProvider{sentences: []Sentence{{Japanese: "火事だ！", English: "Fire!"}}}

	words := []vocab.Word{
		{ID: 1, Characters: "病院", Reading: "びょういん", Meaning: "Hospital", Level: 3},
		{ID: 2, Characters: "学校", Reading: "がっこう", Meaning: "School", Level: 1},
	}

	gen := NewGenerator(provider, GeneratorOptions{OutputPath: output})
	results, err := gen.Generate(context.Background(), words)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(results))
	}
	if results[0].SubjectID != 1 || results[0].Word != "病院" {
		t.Errorf("Expected word metadata carried over, got %+v", results[0])
	}

	loaded, err := Load(output)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 || len(loaded[0].Sentences) != 1 {
		t.Errorf("Expected saved file to match results, got %+v", loaded)
	}
}

func TestGenerateContinuesAfterWordFailure(t *testing.T) {
	output := filepath.Join(t.TempDir(), "sentences.json")
	provider := &mockProvider{
		sentences: []Sentence{{Japanese: "a", English: "b"}},
		failFor:   "病院",
	}

	words := []vocab.Word{
		{ID: 1, Characters: "病院"},
		{ID: 2, Characters: "学校"},
	}

	gen := NewGenerator(provider, GeneratorOptions{OutputPath: output})
	results, err := gen.Generate(context.Background(), words)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected both words in output, got %d", len(results))
	}
	if len(results[0].Sentences) != 0 {
		t.Errorf("Expected failed word to keep an empty sentence list, got %+v", results[0].Sentences)
	}
	if len(results[1].Sentences) != 1 {
		t.Errorf("Expected the run to continue after a failure, got %+v", results[1].Sentences)
	}
}

func TestGenerateHonorsLimit(t *testing.T) {
	output := filepath.Join(t.TempDir(), "sentences.json")
	provider := &mockProvider{sentences: []Sentence{{Japanese: "a", English: "b"}}}

	words := make([]vocab.Word, 5)
	gen := NewGenerator(provider, GeneratorOptions{OutputPath: output, Limit: 2})
	results, err := gen.Generate(context.Background(), words)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(results) != 2 {
		t.Errorf("Expected limit of 2 words, got %d", len(results))
	}
	if provider.generateCalls != 2 {
		t.Errorf("Expected 2 provider calls, got %d", provider.generateCalls)
	}
}

func TestGenerateFailsWhenProviderUnavailable(t *testing.T) {
	provider := &mockProvider{availableErr: errors.New("no key")}
	gen := NewGenerator(provider, GeneratorOptions{OutputPath: filepath.Join(t.TempDir(), "s.json")})

	if _, err := gen.Generate(context.Background(), []vocab.Word{{ID: 1}}); err == nil {
		t.Error("Expected an error when the provider is unavailable")
	}
}
