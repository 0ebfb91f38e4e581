package sentence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Sentence is one narrated practice sentence. Image is optional; when
// present it names a root-relative illustration path the offline cache
// prefetches.
type Sentence struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
	Image    string `json:"image,omitempty"`
}

// WordSentences groups the generated sentences for one vocabulary word.
// This is the record shape of sentences.json, the trainer's primary
// data file.
type WordSentences struct {
	SubjectID int        `json:"subject_id"`
	Word      string     `json:"word"`
	Reading   string     `json:"reading"`
	Meaning   string     `json:"meaning"`
	Level     int        `json:"level"`
	Sentences []Sentence `json:"sentences"`
}

// Save writes the sentence data file, creating parent directories.
func Save(path string, groups []WordSentences) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sentences: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sentences file: %w", err)
	}
	return nil
}

// Load reads a sentence data file previously written by Save.
func Load(path string) ([]WordSentences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sentences file: %w", err)
	}

	var groups []WordSentences
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse sentences file: %w", err)
	}
	return groups, nil
}
